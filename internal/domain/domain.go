package domain

import (
	"github.com/yungbote/acadboost-backend/internal/domain/ai"
	"github.com/yungbote/acadboost-backend/internal/domain/catalog"
)

const (
	FlowRunStatusOK        = ai.FlowRunStatusOK
	FlowRunStatusDegraded  = ai.FlowRunStatusDegraded
	FlowRunStatusRejected  = ai.FlowRunStatusRejected
	FlowRunStatusCancelled = ai.FlowRunStatusCancelled
)

type (
	Course     = catalog.Course
	FlowRun    = ai.FlowRun
	LinkRecord = ai.LinkRecord
)
