package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
)

var ErrNotFound = errors.New("profile not found")

// Profile holds a player's saved display name and appearance
// preferences.
type Profile struct {
	Name       string    `json:"name"`
	CardTheme  string    `json:"card_theme,omitempty"`
	TableTheme string    `json:"table_theme,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Service interface {
	Close() error
	Get(ctx context.Context, name string) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
}

func profileModeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("PROFILE_MODE")))
	switch raw {
	case "", ModeSQLite, "local":
		return ModeSQLite
	case ModeMemory, "mem":
		return ModeMemory
	default:
		return raw
	}
}

// NewServiceFromEnv picks the backend from PROFILE_MODE: a local
// sqlite file (default) or an in-memory map.
func NewServiceFromEnv() (Service, string, error) {
	mode := profileModeFromEnv()

	switch mode {
	case ModeSQLite:
		service, err := NewSQLiteServiceFromEnv()
		if err != nil {
			return nil, mode, err
		}
		return service, mode, nil
	case ModeMemory:
		return NewMemoryService(), mode, nil
	default:
		return nil, mode, fmt.Errorf("invalid PROFILE_MODE %q (supported: %s, %s)",
			mode, ModeSQLite, ModeMemory)
	}
}

type memoryService struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryService() Service {
	return &memoryService{profiles: make(map[string]Profile)}
}

func (m *memoryService) Close() error { return nil }

func (m *memoryService) Get(_ context.Context, name string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[strings.TrimSpace(name)]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryService) Upsert(_ context.Context, p Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("empty profile name")
	}
	p.UpdatedAt = time.Now().UTC()
	m.mu.Lock()
	m.profiles[p.Name] = p
	m.mu.Unlock()
	return nil
}
