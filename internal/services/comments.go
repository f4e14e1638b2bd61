package services

import (
	"context"
	"strings"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/sirupsen/logrus"
)

type CommentService struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewCommentService(repoManager *repository.RepositoryManager, logger *logrus.Logger) *CommentService {
	return &CommentService{
		repoManager: repoManager,
		logger:      logger,
	}
}

func (s *CommentService) List(ctx context.Context, questionID uint) ([]models.Comment, error) {
	if _, err := s.question(ctx, questionID); err != nil {
		return nil, err
	}
	return s.repoManager.Comment.ListByQuestion(ctx, questionID)
}

func (s *CommentService) Add(ctx context.Context, userID string, questionID uint, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment is required")
	}
	if _, err := s.question(ctx, questionID); err != nil {
		return nil, err
	}

	comment := &models.Comment{QuestionID: questionID, UserID: userID, CommentText: text}
	if err := s.repoManager.Comment.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"comment_id":  comment.ID,
		"question_id": questionID,
	}).Info("Comment added")
	return comment, nil
}

// MarkRead marks a comment read. Only the owner of the question may do so.
func (s *CommentService) MarkRead(ctx context.Context, userID string, commentID uint) error {
	comment, err := s.repoManager.Comment.GetByID(ctx, commentID)
	if err != nil {
		return notFound("comment", err)
	}
	if err := s.requireOwner(ctx, userID, comment.QuestionID); err != nil {
		return err
	}
	return s.repoManager.Comment.MarkRead(ctx, commentID)
}

func (s *CommentService) ListTeach(ctx context.Context, questionID uint) ([]models.TeachComment, error) {
	if _, err := s.question(ctx, questionID); err != nil {
		return nil, err
	}
	return s.repoManager.TeachComment.ListByQuestion(ctx, questionID)
}

// AddTeach stores an instructor reply; callers gate on the teacher role.
func (s *CommentService) AddTeach(ctx context.Context, teacherID string, questionID uint, text string) (*models.TeachComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("comment is required")
	}
	if _, err := s.question(ctx, questionID); err != nil {
		return nil, err
	}

	comment := &models.TeachComment{QuestionID: questionID, UserID: teacherID, CommentText: text}
	if err := s.repoManager.TeachComment.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"teach_comment_id": comment.ID,
		"question_id":      questionID,
		"teacher_id":       teacherID,
	}).Info("Teacher comment added")
	return comment, nil
}

func (s *CommentService) MarkTeachRead(ctx context.Context, userID string, commentID uint) error {
	comment, err := s.repoManager.TeachComment.GetByID(ctx, commentID)
	if err != nil {
		return notFound("comment", err)
	}
	if err := s.requireOwner(ctx, userID, comment.QuestionID); err != nil {
		return err
	}
	return s.repoManager.TeachComment.MarkRead(ctx, commentID)
}

func (s *CommentService) question(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repoManager.Question.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("question", err)
	}
	return question, nil
}

func (s *CommentService) requireOwner(ctx context.Context, userID string, questionID uint) error {
	question, err := s.question(ctx, questionID)
	if err != nil {
		return err
	}
	if question.UserID != userID {
		return ErrForbidden
	}
	return nil
}
