package composite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedgen/internal/domain/model"
	"feedgen/internal/infrastructure/storage"
)

type failingRepo struct{ err error }

func (f failingRepo) SaveArtifact(context.Context, *model.RunRecord, []byte) error { return f.err }
func (f failingRepo) LatestArtifact(context.Context) ([]byte, error)              { return nil, f.err }
func (f failingRepo) Close() error                                                 { return nil }

type countingRepo struct {
	failingRepo
	saves int
}

func (c *countingRepo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	c.saves++
	return c.failingRepo.SaveArtifact(ctx, rec, doc)
}

func TestHistoryFailureDoesNotFailSave(t *testing.T) {
	primary, history := storage.NewInMemoryRepository(), storage.NewInMemoryRepository()
	repo := New(primary, nil, failingRepo{err: errors.New("redis down")}, history)

	rec := &model.RunRecord{RunID: uuid.New()}
	err := repo.SaveArtifact(context.Background(), rec, []byte(`{"version":1}`))
	require.NoError(t, err)
	assert.Len(t, primary.Artifacts(), 1)
	assert.Len(t, history.Artifacts(), 1)

	doc, err := repo.LatestArtifact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(doc))
}

func TestPrimaryFailureSkipsHistory(t *testing.T) {
	boom := errors.New("disk full")
	history := &countingRepo{}
	repo := New(failingRepo{err: boom}, history)

	err := repo.SaveArtifact(context.Background(), &model.RunRecord{RunID: uuid.New()}, []byte(`{}`))
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, history.saves)
}

func TestLatestArtifactPrefersHistory(t *testing.T) {
	primary, history := storage.NewInMemoryRepository(), storage.NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, primary.SaveArtifact(ctx, &model.RunRecord{RunID: uuid.New()}, []byte(`"file"`)))
	require.NoError(t, history.SaveArtifact(ctx, &model.RunRecord{RunID: uuid.New()}, []byte(`"db"`)))

	doc, err := New(primary, history).LatestArtifact(ctx)
	require.NoError(t, err)
	assert.Equal(t, `"db"`, string(doc))
}

func TestLatestArtifactNoneStored(t *testing.T) {
	repo := New(storage.NewInMemoryRepository())
	doc, err := repo.LatestArtifact(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)

	boom := errors.New("down")
	_, err = New(failingRepo{err: boom}, storage.NewInMemoryRepository()).LatestArtifact(context.Background())
	assert.ErrorIs(t, err, boom)
}
