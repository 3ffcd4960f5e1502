package auth

import "context"

// APIKey holds the identity and scope data for a validated back-office key.
type APIKey struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC-SHA256 hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKey, error)
}
