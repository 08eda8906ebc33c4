package api

import "github.com/andremonteiro/diagnostico/internal/services"

type settingsStoreAdapter struct {
	store Store
}

func newSettingsStoreAdapter(store Store) *settingsStoreAdapter {
	return &settingsStoreAdapter{store: store}
}

var _ services.SettingsStore = (*settingsStoreAdapter)(nil)

func (a *settingsStoreAdapter) GetSettings() (*services.Settings, error) {
	v := a.store.GetSettings()
	if v == nil {
		return nil, nil
	}
	return &services.Settings{Logo: v.Logo, NavbarLogo: v.NavbarLogo, UpdatedAt: v.UpdatedAt}, nil
}

func (a *settingsStoreAdapter) UpsertSettings(v *services.Settings) error {
	a.store.UpsertSettings(&Settings{Logo: v.Logo, NavbarLogo: v.NavbarLogo, UpdatedAt: v.UpdatedAt})
	return nil
}
