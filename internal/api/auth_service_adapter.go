package api

import "github.com/andremonteiro/diagnostico/internal/services"

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) *authStoreAdapter {
	return &authStoreAdapter{store: store}
}

var _ services.AuthStore = (*authStoreAdapter)(nil)

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	u := a.store.FindUserByEmail(email)
	if u == nil {
		return nil, nil
	}
	return &services.User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, Role: u.Role, CreatedAt: u.CreatedAt}, nil
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	a.store.AddUser(&User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, Role: u.Role, CreatedAt: u.CreatedAt})
	return nil
}

func (a *authStoreAdapter) CountUsers() (int, error) {
	return a.store.CountUsers(), nil
}
