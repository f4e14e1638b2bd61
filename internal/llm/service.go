package llm

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultAnswerTimeout = 20 * time.Second

// AnswerRequest is a validated question bound for one provider.
type AnswerRequest struct {
	Question   string
	CourseName string
	Model      Model
}

type AnswerService struct {
	resolver Resolver
	timeout  time.Duration
	logger   *logrus.Logger
}

func NewAnswerService(resolver Resolver, timeout time.Duration, logger *logrus.Logger) *AnswerService {
	if timeout <= 0 {
		timeout = DefaultAnswerTimeout
	}
	return &AnswerService{
		resolver: resolver,
		timeout:  timeout,
		logger:   logger,
	}
}

type generateResult struct {
	answer string
	err    error
}

// Answer resolves the provider, renders the prompt and waits for the answer
// until the deadline. The provider call shares the deadline context, so a
// timeout aborts the outbound request as well.
func (s *AnswerService) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	provider, err := s.resolver.Resolve(req.Model)
	if err != nil {
		return "", err
	}

	prompt := BuildPrompt(req.Question, req.CourseName)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	logger := s.logger.WithFields(logrus.Fields{
		"provider": provider.Name(),
		"course":   req.CourseName,
	})
	logger.Info("Requesting answer")
	start := time.Now()

	done := make(chan generateResult, 1)
	go func() {
		answer, err := provider.Generate(ctx, prompt, req.CourseName)
		done <- generateResult{answer: answer, err: err}
	}()

	var res generateResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		if isTimeout(res.err) {
			res.err = ErrTimeout
		}
		logger.WithError(res.err).WithField("duration", time.Since(start)).Error("Provider call failed")
		return "", &ProviderError{Provider: provider.Name(), Err: res.err}
	}
	if res.answer == "" {
		logger.Error("Provider returned no text")
		return "", &ProviderError{Provider: provider.Name(), Err: ErrEmptyResponse}
	}

	logger.WithFields(logrus.Fields{
		"duration":    time.Since(start),
		"answer_size": len(res.answer),
	}).Info("Answer received")

	return res.answer, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
