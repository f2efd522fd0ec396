package redis

import (
	"context"
	"time"
)

// BlocklistKeyPrefix is the prefix for revoked token entries
const BlocklistKeyPrefix = "auth:revoked:"

// Blocklist stores revoked token IDs until their natural expiry.
type Blocklist struct {
	client *Client
}

// NewBlocklist creates a new token blocklist backed by Redis
func NewBlocklist(client *Client) *Blocklist {
	return &Blocklist{client: client}
}

// Revoke marks the token ID as revoked for the remainder of its lifetime.
// A non-positive ttl still writes the entry with a minimal expiry so a
// token revoked at the edge of its lifetime cannot slip through.
func (b *Blocklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	return b.client.Set(ctx, BlocklistKeyPrefix+tokenID, "revoked", ttl)
}

// IsRevoked reports whether the token ID has been revoked.
func (b *Blocklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return b.client.Exists(ctx, BlocklistKeyPrefix+tokenID)
}
