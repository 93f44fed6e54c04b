// Package preferences keeps per-device UI settings: the color theme and
// which one-off notices the shopper has dismissed.
package preferences

import (
	"context"
	"regexp"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	themeKey      = "theme"
	dismissPrefix = "jerseyx_dismissed_"
)

var (
	ErrInvalidTheme = errors.New("theme must be light or dark")
	ErrInvalidFlag  = errors.New("invalid flag name")

	flagPattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Store holds one device's preferences. Writes go through to durable
// storage; failures are logged and the in-memory values win.
type Store struct {
	storage storage.Store
	logger  log.FieldLogger

	mu        sync.Mutex
	theme     Theme
	dismissed map[string]bool
}

func NewStore(ctx context.Context, s storage.Store, logger log.FieldLogger) *Store {
	st := &Store{
		storage:   s,
		logger:    logger.WithField("store", "preferences"),
		theme:     ThemeLight,
		dismissed: map[string]bool{},
	}
	saved, err := s.Get(ctx, themeKey)
	switch {
	case err == nil && Theme(saved).Valid():
		st.theme = Theme(saved)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		st.logger.WithError(err).Warn("reading theme")
	}
	return st
}

func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return ErrInvalidTheme
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	s.save(ctx, themeKey, string(t))
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme(ctx context.Context) Theme {
	s.mu.Lock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	t := s.theme
	s.mu.Unlock()
	s.save(ctx, themeKey, string(t))
	return t
}

func (s *Store) Dismiss(ctx context.Context, flag string) error {
	if !flagPattern.MatchString(flag) {
		return ErrInvalidFlag
	}
	s.mu.Lock()
	s.dismissed[flag] = true
	s.mu.Unlock()
	s.save(ctx, dismissPrefix+flag, "1")
	return nil
}

// Dismissed reports whether flag was dismissed on this device.
func (s *Store) Dismissed(ctx context.Context, flag string) (bool, error) {
	if !flagPattern.MatchString(flag) {
		return false, ErrInvalidFlag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dismissed[flag] {
		return true, nil
	}
	v, err := s.storage.Get(ctx, dismissPrefix+flag)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.WithError(err).WithField("flag", flag).Warn("reading dismissal")
		}
		return false, nil
	}
	s.dismissed[flag] = v == "1"
	return s.dismissed[flag], nil
}

func (s *Store) save(ctx context.Context, key, value string) {
	if err := s.storage.Set(ctx, key, value); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("persisting preference")
	}
}
