package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldtrack/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	userTokensKeyPrefix   = "user_tokens:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
)

// TokenStoreInterface defines the interface for token storage operations.
// Refresh tokens are single-use: Refresh rotation deletes the consumed ID
// before storing its replacement.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error)
	DeleteRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
	PruneUserSet(ctx context.Context, userID uuid.UUID) (removed int, err error)
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore handles storage and retrieval of tokens in Redis. Each user also
// gets a set of live refresh-token IDs so every session can be revoked at once.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

func userSetKey(userID uuid.UUID) string {
	return userTokensKeyPrefix + userID.String()
}

// StoreRefreshToken stores a refresh token in Redis with TTL and indexes it
// under the owning user.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	payload, err := json.Marshal(map[string]string{"user_id": userID.String()})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}

	if err := s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl); err != nil {
		return err
	}
	return s.cache.SAdd(ctx, userSetKey(userID), tokenID)
}

// GetRefreshToken retrieves the owning user of a refresh token.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	data, err := s.cache.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return uuid.Nil, fmt.Errorf("refresh token not found")
	}

	var tokenData map[string]string
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return uuid.Nil, fmt.Errorf("unmarshal token data: %w", err)
	}

	userID, err := uuid.Parse(tokenData["user_id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user_id in token data")
	}
	return userID, nil
}

// DeleteRefreshToken removes a refresh token and its user-set entry.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if err := s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID); err != nil {
		return err
	}
	return s.cache.SRem(ctx, userSetKey(userID), tokenID)
}

// RevokeAll deletes every live refresh token of a user.
func (s *TokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	tokenIDs, err := s.cache.SMembers(ctx, userSetKey(userID))
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokenIDs)+1)
	for _, id := range tokenIDs {
		keys = append(keys, refreshTokenKeyPrefix+id)
	}
	keys = append(keys, userSetKey(userID))
	return s.cache.Delete(ctx, keys...)
}

// PruneUserSet drops user-set entries whose token key already expired. Token
// keys carry their own TTL; the set does not, so it accumulates dangling IDs.
func (s *TokenStore) PruneUserSet(ctx context.Context, userID uuid.UUID) (int, error) {
	tokenIDs, err := s.cache.SMembers(ctx, userSetKey(userID))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range tokenIDs {
		exists, err := s.cache.Exists(ctx, refreshTokenKeyPrefix+id)
		if err != nil {
			continue
		}
		if !exists {
			if err := s.cache.SRem(ctx, userSetKey(userID), id); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// UserSetKeys lists all per-user token-set keys, for the maintenance job.
func (s *TokenStore) UserSetKeys(ctx context.Context) ([]string, error) {
	return s.cache.Keys(ctx, userTokensKeyPrefix+"*")
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.cache.Set(ctx, accessTokenKeyPrefix+tokenID, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.cache.Get(ctx, accessTokenKeyPrefix+tokenID)
	if err != nil {
		return false, nil
	}
	return data != nil, nil
}
