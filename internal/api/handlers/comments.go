package handlers

import (
	"net/http"

	"github.com/Ken2664/llm-question-app/internal/middleware"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CommentHandler struct {
	comments *services.CommentService
	logger   *logrus.Logger
}

func NewCommentHandler(comments *services.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.comments.List(c.Request.Context(), questionID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list comments", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Comments retrieved", comments)
}

func (h *CommentHandler) AddComment(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid comment format", err)
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), middleware.UserID(c), questionID, req.Comment)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to add comment", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Comment added", comment)
}

func (h *CommentHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.comments.MarkRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondServiceError(c, h.logger, "Failed to mark comment read", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Comment marked read", nil)
}

func (h *CommentHandler) ListTeachComments(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.comments.ListTeach(c.Request.Context(), questionID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list teacher comments", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Teacher comments retrieved", comments)
}

func (h *CommentHandler) AddTeachComment(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid comment format", err)
		return
	}

	comment, err := h.comments.AddTeach(c.Request.Context(), middleware.UserID(c), questionID, req.Comment)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to add teacher comment", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Teacher comment added", comment)
}

func (h *CommentHandler) MarkTeachRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.comments.MarkTeachRead(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondServiceError(c, h.logger, "Failed to mark comment read", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Comment marked read", nil)
}
