package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/acadboost-backend/internal/data/repos"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

type Repos struct {
	Course  repos.CourseRepo
	FlowRun repos.FlowRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Course:  repos.NewCourseRepo(db, log),
		FlowRun: repos.NewFlowRunRepo(db, log),
	}
}
