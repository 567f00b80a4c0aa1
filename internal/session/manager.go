// Package session is the single source of truth for who is signed in.
//
// A Manager issues and verifies signed tokens, revokes them on logout and
// notifies subscribers of login and logout events. HTTP middleware is the only
// consumer that checks identity and role; handlers read the Identity placed on
// the request context.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cfq/wod-board/internal/domain"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const issuer = "wod-board"

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenRevoked = errors.New("session token revoked")
)

// Identity is the verified holder of a token.
type Identity struct {
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	TokenID   string      `json:"-"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

type Event struct {
	Kind     EventKind
	Identity Identity
	At       time.Time
}

type claims struct {
	UserID string      `json:"uid"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

// NewManager panics on an empty secret. A nil store keeps revocations in memory.
func NewManager(secret string, ttl time.Duration, store RevocationStore) *Manager {
	if secret == "" {
		panic("session secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: store,
		now:     time.Now,
		subs:    make(map[int]func(Event)),
	}
}

// Issue signs a token for user and announces the login.
func (m *Manager) Issue(user *domain.User) (string, Identity, error) {
	now := m.now()
	id := Identity{
		UserID:    user.ID,
		Name:      user.Name,
		Role:      user.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserID: id.UserID,
		Name:   id.Name,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.TokenID,
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign token: %w", err)
	}

	m.publish(Event{Kind: EventLogin, Identity: id, At: now})
	return signed, id, nil
}

// Verify checks signature, expiry and revocation.
func (m *Manager) Verify(ctx context.Context, token string) (*Identity, error) {
	c := &claims{}
	parser := jwt.Parser{}
	_, err := parser.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.UserID == "" || c.ID == "" || !c.Role.IsValid() || c.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if c.ExpiresAt.Time.Before(m.now()) {
		return nil, ErrTokenExpired
	}

	revoked, err := m.revoked.IsRevoked(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &Identity{
		UserID:    c.UserID,
		Name:      c.Name,
		Role:      c.Role,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates the identity's token until it would have expired anyway
// and announces the logout.
func (m *Manager) Revoke(ctx context.Context, id Identity) error {
	now := m.now()
	ttl := id.ExpiresAt.Sub(now)
	if ttl > 0 {
		if err := m.revoked.Revoke(ctx, id.TokenID, ttl); err != nil {
			return fmt.Errorf("revoke token: %w", err)
		}
	}
	m.publish(Event{Kind: EventLogout, Identity: id, At: now})
	return nil
}

// Subscribe registers fn for session events and returns its unsubscribe func.
// fn runs synchronously on the goroutine that caused the event.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()

	for _, fn := range subs {
		fn(e)
	}
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity placed by the auth middleware, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}
