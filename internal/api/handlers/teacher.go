package handlers

import (
	"net/http"

	"github.com/Ken2664/llm-question-app/internal/middleware"
	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TeacherHandler struct {
	teachers *services.TeacherService
	logger   *logrus.Logger
}

func NewTeacherHandler(teachers *services.TeacherService, logger *logrus.Logger) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, logger: logger}
}

func (h *TeacherHandler) Unresolved(c *gin.Context) {
	groups, err := h.teachers.Unresolved(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list unresolved questions", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Unresolved questions retrieved", groups)
}

func (h *TeacherHandler) ClaimCourse(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	course, err := h.teachers.ClaimCourse(c.Request.Context(), middleware.UserID(c), courseID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to claim course", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Course claimed", course)
}
