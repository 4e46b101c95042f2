package repos

import (
	"github.com/yungbote/acadboost-backend/internal/data/repos/ai"
	"github.com/yungbote/acadboost-backend/internal/data/repos/catalog"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CourseRepo = catalog.CourseRepo
type FlowRunRepo = ai.FlowRunRepo

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}

func NewFlowRunRepo(db *gorm.DB, baseLog *logger.Logger) FlowRunRepo {
	return ai.NewFlowRunRepo(db, baseLog)
}
