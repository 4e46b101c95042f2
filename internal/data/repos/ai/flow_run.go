package ai

import (
	"context"

	types "github.com/yungbote/acadboost-backend/internal/domain"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type FlowRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, runs []*types.FlowRun) ([]*types.FlowRun, error)
	// Record writes a single run outside any transaction.
	Record(ctx context.Context, run *types.FlowRun) error
	ListRecent(ctx context.Context, tx *gorm.DB, flowID string, limit int) ([]*types.FlowRun, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, flowID string) (map[string]int64, error)
}

type flowRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlowRunRepo(db *gorm.DB, baseLog *logger.Logger) FlowRunRepo {
	repoLog := baseLog.With("repo", "FlowRunRepo")
	return &flowRunRepo{db: db, log: repoLog}
}

func (r *flowRunRepo) Create(ctx context.Context, tx *gorm.DB, runs []*types.FlowRun) ([]*types.FlowRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(runs) == 0 {
		return []*types.FlowRun{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *flowRunRepo) Record(ctx context.Context, run *types.FlowRun) error {
	if run == nil {
		return nil
	}
	_, err := r.Create(ctx, nil, []*types.FlowRun{run})
	return err
}

func (r *flowRunRepo) ListRecent(ctx context.Context, tx *gorm.DB, flowID string, limit int) ([]*types.FlowRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var results []*types.FlowRun
	q := transaction.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if flowID != "" {
		q = q.Where("flow_id = ?", flowID)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *flowRunRepo) CountByStatus(ctx context.Context, tx *gorm.DB, flowID string) (map[string]int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Status string
		N      int64
	}
	q := transaction.WithContext(ctx).Model(&types.FlowRun{}).Select("status, COUNT(*) AS n").Group("status")
	if flowID != "" {
		q = q.Where("flow_id = ?", flowID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}
