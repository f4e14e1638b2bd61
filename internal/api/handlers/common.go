package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondServiceError maps service sentinels onto HTTP statuses.
func respondServiceError(c *gin.Context, logger *logrus.Logger, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	entry := logger.WithError(err).WithField("path", c.FullPath())
	if status == http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}

	utils.ErrorResponse(c, status, message, err)
}

// pathID parses a positive numeric path parameter, writing 400 when it is not.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name, err)
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter.
func queryID(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name, err)
		return nil, false
	}
	v := uint(id)
	return &v, true
}
