// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SellerSession is the session record the external auth service writes to
// Redis at login. This core only reads it; minting, refresh and revocation
// all live with the auth collaborator.
type SellerSession struct {
	SellerID  int64     `json:"seller_id"`
	Email     string    `json:"email,omitempty"`
	LoginAt   time.Time `json:"login_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Manager struct {
	client *redis.Client
}

func NewManager(client *redis.Client) *Manager {
	return &Manager{client: client}
}

func (m *Manager) sessionKey(token string) string {
	return fmt.Sprintf("session:seller:%s", token)
}

// Resolve maps an opaque bearer token to the seller session behind it.
func (m *Manager) Resolve(ctx context.Context, token string) (*SellerSession, error) {
	data, err := m.client.Get(ctx, m.sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s SellerSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}
