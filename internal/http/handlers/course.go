package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/acadboost-backend/internal/data/repos"
	"github.com/yungbote/acadboost-backend/internal/http/response"
	"github.com/yungbote/acadboost-backend/internal/platform/logger"
)

type CourseHandler struct {
	log     *logger.Logger
	courses repos.CourseRepo
}

func NewCourseHandler(log *logger.Logger, courses repos.CourseRepo) *CourseHandler {
	return &CourseHandler{
		log:     log.With("handler", "CourseHandler"),
		courses: courses,
	}
}

// List returns the catalogue, optionally narrowed by ?category=.
func (h *CourseHandler) List(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	courses, err := h.courses.List(c.Request.Context(), nil, category)
	if err != nil {
		h.log.Error("List courses failed", "error", err, "category", category)
		response.RespondError(c, http.StatusInternalServerError, "load_courses_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}
