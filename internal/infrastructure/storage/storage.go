package storage

import (
	"context"
	"sync"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

// Artifact 一条归档记录
type Artifact struct {
	Record model.RunRecord
	Doc    []byte
}

// InMemoryRepository keeps artifacts in process memory, newest last
type InMemoryRepository struct {
	mu        sync.Mutex
	artifacts []Artifact
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		artifacts: make([]Artifact, 0),
	}
}

func (r *InMemoryRepository) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, Artifact{Record: *rec, Doc: append([]byte(nil), doc...)})
	return nil
}

func (r *InMemoryRepository) LatestArtifact(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.artifacts) == 0 {
		return nil, nil
	}
	return append([]byte(nil), r.artifacts[len(r.artifacts)-1].Doc...), nil
}

// Artifacts returns a copy of everything saved so far
func (r *InMemoryRepository) Artifacts() []Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Artifact(nil), r.artifacts...)
}

func (r *InMemoryRepository) Close() error {
	return nil
}

var _ port.Repository = (*InMemoryRepository)(nil)
