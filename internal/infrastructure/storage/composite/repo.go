package composite

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

// Repo 先写主仓储（输出文件），失败即返回；历史仓储尽力写入，失败只记录告警。
// 读取时历史仓储优先，最后回退到主仓储
type Repo struct {
	primary port.Repository
	history []port.Repository
}

func New(primary port.Repository, history ...port.Repository) *Repo {
	out := make([]port.Repository, 0, len(history))
	for _, r := range history {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{primary: primary, history: out}
}

func (r *Repo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	if r.primary != nil {
		if err := r.primary.SaveArtifact(ctx, rec, doc); err != nil {
			return err
		}
	}
	for _, repo := range r.history {
		if err := repo.SaveArtifact(ctx, rec, doc); err != nil {
			log.Warn().Err(err).Str("run_id", rec.RunID.String()).Msg("history archive failed")
		}
	}
	return nil
}

func (r *Repo) LatestArtifact(ctx context.Context) ([]byte, error) {
	var firstErr error
	for _, repo := range r.all() {
		doc, err := repo.LatestArtifact(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if doc != nil {
			return doc, nil
		}
	}
	return nil, firstErr
}

func (r *Repo) Close() error {
	var errs []error
	for _, repo := range r.all() {
		if err := repo.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Repo) all() []port.Repository {
	out := append([]port.Repository(nil), r.history...)
	if r.primary != nil {
		out = append(out, r.primary)
	}
	return out
}

var _ port.Repository = (*Repo)(nil)
