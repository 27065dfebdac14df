package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
)

const draftKeyPrefix = "registration:draft:"

// RegistrationDraftRepository stores wizard drafts in Redis.
type RegistrationDraftRepository struct {
	client redis.Cmdable
	logger *zap.Logger
}

// NewRegistrationDraftRepository constructs a draft repository.
func NewRegistrationDraftRepository(client redis.Cmdable, logger *zap.Logger) *RegistrationDraftRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationDraftRepository{client: client, logger: logger}
}

func draftKey(token string) string {
	return draftKeyPrefix + token
}

// Get loads a draft. A missing or expired draft yields ErrCacheMiss.
func (r *RegistrationDraftRepository) Get(ctx context.Context, token string) (*models.RegistrationDraft, error) {
	if r.client == nil {
		return nil, appErrors.ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, draftKey(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get draft %s: %w", token, err)
	}

	var draft models.RegistrationDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", token, err)
	}
	return &draft, nil
}

// Save stores the draft and resets its TTL.
func (r *RegistrationDraftRepository) Save(ctx context.Context, draft *models.RegistrationDraft, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("draft store unavailable")
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.Token, err)
	}

	if err := r.client.Set(ctx, draftKey(draft.Token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draft.Token, err)
	}
	return nil
}

// Delete removes a draft. Deleting an unknown draft is not an error.
func (r *RegistrationDraftRepository) Delete(ctx context.Context, token string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, draftKey(token)).Err(); err != nil {
		r.logger.Warn("failed to delete registration draft", zap.String("token", token), zap.Error(err))
		return fmt.Errorf("redis delete draft %s: %w", token, err)
	}
	return nil
}
