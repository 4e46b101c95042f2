package catalog

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/acadboost-backend/internal/domain"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	List(ctx context.Context, tx *gorm.DB, category string) ([]*types.Course, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	// CatalogText renders the catalogue as the numbered text the
	// recommendation prompt expects.
	CatalogText(ctx context.Context, tx *gorm.DB) (string, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB, category string) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
	q := transaction.WithContext(ctx).Order("position ASC").Order("title ASC")
	if category = strings.TrimSpace(category); category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).Model(&types.Course{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *courseRepo) CatalogText(ctx context.Context, tx *gorm.DB) (string, error) {
	courses, err := r.List(ctx, tx, "")
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(courses))
	for i, c := range courses {
		entry := fmt.Sprintf("%d. %s.", i+1, c.Title)
		if d := strings.TrimSpace(c.Description); d != "" {
			entry = fmt.Sprintf("%d. %s - %s", i+1, c.Title, d)
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, " "), nil
}
