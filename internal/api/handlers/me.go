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

type MeHandler struct {
	profiles *services.ProfileService
	logger   *logrus.Logger
}

func NewMeHandler(profiles *services.ProfileService, logger *logrus.Logger) *MeHandler {
	return &MeHandler{profiles: profiles, logger: logger}
}

// Unresolved lists the caller's open questions and their unread replies.
func (h *MeHandler) Unresolved(c *gin.Context) {
	list, err := h.profiles.Unresolved(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list unresolved questions", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Unresolved questions retrieved", list)
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	user, err := h.profiles.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondServiceError(c, h.logger, "Failed to get profile", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved", user)
}

func (h *MeHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid profile format", err)
		return
	}

	user, err := h.profiles.Update(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to update profile", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Profile updated", user)
}
