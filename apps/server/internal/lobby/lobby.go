// Package lobby tracks live sessions by their shareable room code.
package lobby

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"bridge-lite/apps/server/internal/session"
)

// Room codes skip the ambiguous characters 0, O, 1 and I.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	CodeLength = 5

	// CodePrefix is the human-facing form: codes are shared as
	// "BRYDZ-XXXXX" but stored and matched without the prefix.
	CodePrefix = "BRYDZ-"
)

// Registry maps room codes to their sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	rng      *rand.Rand
}

func NewRegistry(seed int64) *Registry {
	return &Registry{
		sessions: make(map[string]*session.Session),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// NewCode returns a fresh code not held by any live session.
func (r *Registry) NewCode() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		code := r.randomCodeLocked()
		if _, taken := r.sessions[code]; !taken {
			return code
		}
	}
}

func (r *Registry) randomCodeLocked() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[r.rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode uppercases a user-supplied code and strips the
// display prefix, rejecting anything that is not a valid code.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.TrimPrefix(code, CodePrefix)
	if len(code) != CodeLength {
		return "", fmt.Errorf("invalid room code %q", raw)
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return "", fmt.Errorf("invalid room code %q", raw)
		}
	}
	return code, nil
}

// DisplayCode is the form shown to players for sharing.
func DisplayCode(code string) string {
	return CodePrefix + code
}

func (r *Registry) Put(code string, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[code]; taken {
		return fmt.Errorf("room code %s already in use", code)
	}
	r.sessions[code] = s
	return nil
}

func (r *Registry) Get(code string) (*session.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, code)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
