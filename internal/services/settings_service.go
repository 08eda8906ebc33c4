package services

import (
	"sync"
	"time"
)

type SettingsStore interface {
	GetSettings() (*Settings, error)
	UpsertSettings(s *Settings) error
}

// SettingsService serves the branding settings (logos) and fans out change
// notifications. UI surfaces subscribe instead of holding their own mutable
// copy; the stored value is the single source of truth.
type SettingsService struct {
	store SettingsStore
	now   func() time.Time

	mu   sync.Mutex
	seq  int
	subs map[int]func(Settings)
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		subs:  map[int]func(Settings){},
	}
}

func (s *SettingsService) Get() (*Settings, error) {
	cur, err := s.store.GetSettings()
	if err != nil {
		return nil, err
	}
	if cur == nil {
		cur = &Settings{}
	}
	return cur, nil
}

// Update merges non-empty fields onto the current settings, persists, and
// notifies subscribers with the merged value.
func (s *SettingsService) Update(in *Settings) error {
	if in == nil {
		return NewInvalidError("settings required")
	}
	cur, err := s.Get()
	if err != nil {
		return err
	}
	merged := *cur
	if in.Logo != "" {
		merged.Logo = in.Logo
	}
	if in.NavbarLogo != "" {
		merged.NavbarLogo = in.NavbarLogo
	}
	merged.UpdatedAt = s.now()
	if err := s.store.UpsertSettings(&merged); err != nil {
		return err
	}
	s.notify(merged)
	return nil
}

// OnChange registers fn to run after every successful Update. The returned
// function removes the subscription.
func (s *SettingsService) OnChange(fn func(Settings)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := s.seq
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *SettingsService) notify(v Settings) {
	s.mu.Lock()
	fns := make([]func(Settings), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}
