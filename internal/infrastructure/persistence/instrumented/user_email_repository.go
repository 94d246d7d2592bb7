// Package instrumented decorates repositories with operation metrics.
package instrumented

import (
	"context"
	"errors"
	"time"

	"github.com/oncallhq/pagerbot/internal/domain/repository"
	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
)

// UserEmailRepository wraps another UserEmailRepository and records a counter
// and duration for every operation. A Get miss counts as a success; only
// infrastructure failures are recorded as errors.
type UserEmailRepository struct {
	inner   repository.UserEmailRepository
	metrics *observability.Metrics
	name    string
}

// NewUserEmailRepository wraps inner. name labels the backing store
// ("memory", "sqlite", "mysql") in the recorded attributes.
func NewUserEmailRepository(inner repository.UserEmailRepository, metrics *observability.Metrics, name string) *UserEmailRepository {
	return &UserEmailRepository{inner: inner, metrics: metrics, name: name}
}

func (r *UserEmailRepository) Get(ctx context.Context, chatUserID string) (string, error) {
	start := time.Now()
	email, err := r.inner.Get(ctx, chatUserID)
	success := err == nil || errors.Is(err, repository.ErrNotFound)
	r.metrics.RecordRepositoryOperation(ctx, "get", r.name, success, time.Since(start))
	return email, err
}

func (r *UserEmailRepository) Set(ctx context.Context, chatUserID, email string) error {
	start := time.Now()
	err := r.inner.Set(ctx, chatUserID, email)
	r.metrics.RecordRepositoryOperation(ctx, "set", r.name, err == nil, time.Since(start))
	return err
}

func (r *UserEmailRepository) Delete(ctx context.Context, chatUserID string) error {
	start := time.Now()
	err := r.inner.Delete(ctx, chatUserID)
	r.metrics.RecordRepositoryOperation(ctx, "delete", r.name, err == nil, time.Since(start))
	return err
}
