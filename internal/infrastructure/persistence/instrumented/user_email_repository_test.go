package instrumented

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/oncallhq/pagerbot/internal/domain/repository"
	"github.com/oncallhq/pagerbot/internal/infrastructure/observability"
	"github.com/oncallhq/pagerbot/internal/infrastructure/persistence/memory"
)

func newTestRepository(t *testing.T) (*UserEmailRepository, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := observability.NewMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return NewUserEmailRepository(memory.NewUserEmailRepository(), metrics, "memory"), reader
}

func TestUserEmailRepositoryDelegates(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "U1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "U1", "alice@example.com"))

	email, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)

	require.NoError(t, repo.Delete(ctx, "U1"))
	_, err = repo.Get(ctx, "U1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserEmailRepositoryRecordsOperations(t *testing.T) {
	repo, reader := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "U1", "alice@example.com"))
	_, err := repo.Get(ctx, "U1")
	require.NoError(t, err)
	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "U1"))

	assert.Equal(t, int64(4), collectOperationCount(t, reader))
}

// collectOperationCount sums the repository operations counter across all
// attribute sets.
func collectOperationCount(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "repository.operations.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "unexpected data type %T", m.Data)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}
