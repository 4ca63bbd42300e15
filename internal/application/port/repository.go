package port

import (
	"context"

	"feedgen/internal/domain/model"
)

// Repository 生成结果的归档存储
type Repository interface {
	// SaveArtifact stores the encoded document together with its run summary
	SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error

	// LatestArtifact returns the most recently stored document, nil when none exists
	LatestArtifact(ctx context.Context) ([]byte, error)

	// Connection management
	Close() error
}
