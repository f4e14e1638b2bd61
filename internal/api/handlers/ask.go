package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/Ken2664/llm-question-app/internal/llm"
	"github.com/Ken2664/llm-question-app/internal/middleware"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

const fallbackErrorMessage = "Internal Server Error"

// Answerer produces an answer for a validated question.
type Answerer interface {
	Answer(ctx context.Context, req llm.AnswerRequest) (string, error)
}

type AskHandler struct {
	answerer Answerer
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewAskHandler(answerer Answerer, logger *logrus.Logger) *AskHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return &AskHandler{
		answerer: answerer,
		validate: validate,
		logger:   logger,
	}
}

// HandleAsk answers a question with the selected model. Responses are
// {"answer": ...} on success and {"error": ...} otherwise.
func (h *AskHandler) HandleAsk(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", c.Request.Method)
		return
	}

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.WithError(err).Debug("Invalid ask request body")
		h.writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	req.Model = strings.TrimSpace(req.Model)
	req.CourseName = strings.TrimSpace(req.CourseName)

	if msg := h.validationMessage(&req); msg != "" {
		h.writeError(c, http.StatusBadRequest, msg)
		return
	}

	model, err := llm.ParseModel(req.Model)
	if err != nil {
		h.writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"model":      model,
		"course":     req.CourseName,
		"length":     len(req.Question),
	}).Info("Received question")

	answer, err := h.answerer.Answer(c.Request.Context(), llm.AnswerRequest{
		Question:   req.Question,
		CourseName: req.CourseName,
		Model:      model,
	})
	if err != nil {
		h.writeAnswerError(c, err)
		return
	}

	// PureJSON keeps <, > and & in the answer as-is.
	c.PureJSON(http.StatusOK, models.AskResponse{Answer: answer})
}

// validationMessage lists every missing field. The model value itself is
// checked by llm.ParseModel once nothing is missing.
func (h *AskHandler) validationMessage(req *models.AskRequest) string {
	err := h.validate.Struct(req)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var missing []string
	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return "missing required parameters: " + strings.Join(missing, ", ")
	}
	return err.Error()
}

func (h *AskHandler) writeAnswerError(c *gin.Context, err error) {
	var cfgErr *llm.ConfigError
	var provErr *llm.ProviderError

	entry := h.logger.WithError(err).WithField("request_id", c.GetString(middleware.RequestIDKey))
	switch {
	case errors.As(err, &cfgErr):
		entry.WithField("key", cfgErr.Key).Error("Provider is not configured")
	case errors.As(err, &provErr):
		entry.WithField("provider", provErr.Provider).Error("Provider call failed")
	default:
		entry.Error("Unexpected error answering question")
	}

	message := err.Error()
	if message == "" {
		message = fallbackErrorMessage
	}
	h.writeError(c, http.StatusInternalServerError, message)
}

func (h *AskHandler) writeError(c *gin.Context, status int, message string) {
	c.JSON(status, models.AskErrorResponse{Error: message})
}

// Recovery turns a panic into the {"error": ...} contract.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("Recovered from panic")

		message := fallbackErrorMessage
		if err, ok := recovered.(error); ok && err.Error() != "" {
			message = err.Error()
		} else if s, ok := recovered.(string); ok && s != "" {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.AskErrorResponse{Error: message})
	})
}
