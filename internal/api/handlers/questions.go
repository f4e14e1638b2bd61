package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Ken2664/llm-question-app/internal/middleware"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxSearchLimit = 100

type QuestionHandler struct {
	questions *services.QuestionService
	logger    *logrus.Logger
}

func NewQuestionHandler(questions *services.QuestionService, logger *logrus.Logger) *QuestionHandler {
	return &QuestionHandler{questions: questions, logger: logger}
}

// CreateQuestion saves an answered question for the caller.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid question format", err)
		return
	}

	question, err := h.questions.Submit(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to save question", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Question saved", question)
}

// SearchQuestions filters by faculty, course, lecture date, keyword and
// solved state.
func (h *QuestionHandler) SearchQuestions(c *gin.Context) {
	facultyID, ok := queryID(c, "faculty_id")
	if !ok {
		return
	}
	courseID, ok := queryID(c, "course_id")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	keyword := strings.TrimSpace(c.Query("q"))
	if len(keyword) > 200 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query too long (max 200 characters)", nil)
		return
	}

	unsolved, _ := strconv.ParseBool(c.DefaultQuery("unsolved", "false"))

	questions, err := h.questions.Search(c.Request.Context(), models.QuestionFilter{
		FacultyID:    facultyID,
		CourseID:     courseID,
		LectureDate:  strings.TrimSpace(c.Query("lecture_date")),
		Keyword:      keyword,
		UnsolvedOnly: unsolved,
		Limit:        limit,
	})
	if err != nil {
		respondServiceError(c, h.logger, "Search failed", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Search completed", questions)
}

func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.questions.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to get question", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Question retrieved", detail)
}

func (h *QuestionHandler) UpdateSolved(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateSolvedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid solved format", err)
		return
	}

	if err := h.questions.SetSolved(c.Request.Context(), middleware.UserID(c), id, *req.Solved); err != nil {
		respondServiceError(c, h.logger, "Failed to update question", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Question updated", gin.H{"id": id, "solved": *req.Solved})
}
