package services

import (
	"context"
	"strings"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/sirupsen/logrus"
)

type QuestionService struct {
	repoManager *repository.RepositoryManager
	catalog     *CatalogService
	logger      *logrus.Logger
}

func NewQuestionService(
	repoManager *repository.RepositoryManager,
	catalog *CatalogService,
	logger *logrus.Logger,
) *QuestionService {
	return &QuestionService{
		repoManager: repoManager,
		catalog:     catalog,
		logger:      logger,
	}
}

// Submit stores an answered question under the lecture of its course and date.
func (s *QuestionService) Submit(ctx context.Context, userID string, req models.CreateQuestionRequest) (*models.Question, error) {
	text := strings.TrimSpace(req.Question)
	if text == "" {
		return nil, invalid("question is required")
	}

	lecture, _, err := s.catalog.GetOrCreateLecture(ctx, req.CourseID, req.LectureDate)
	if err != nil {
		return nil, err
	}

	question := &models.Question{
		UserID:       userID,
		LectureID:    lecture.ID,
		QuestionText: text,
		AnswerText:   req.Answer,
		Solved:       req.Solved,
	}
	if err := s.repoManager.Question.Create(ctx, question); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"question_id": question.ID,
		"lecture_id":  lecture.ID,
		"user_id":     userID,
		"solved":      question.Solved,
	}).Info("Question saved")

	question.Lecture = lecture
	return question, nil
}

func (s *QuestionService) Search(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error) {
	if filter.LectureDate != "" {
		if err := models.ValidateDate(filter.LectureDate); err != nil {
			return nil, invalid("%v", err)
		}
	}

	questions, err := s.repoManager.Question.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"keyword": filter.Keyword,
		"results": len(questions),
	}).Debug("Question search completed")

	return questions, nil
}

// Get returns a question with both comment threads.
func (s *QuestionService) Get(ctx context.Context, id uint) (*models.QuestionDetail, error) {
	question, err := s.repoManager.Question.GetByID(ctx, id)
	if err != nil {
		return nil, notFound("question", err)
	}

	comments, err := s.repoManager.Comment.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	teachComments, err := s.repoManager.TeachComment.ListByQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.QuestionDetail{
		Question:      *question,
		Comments:      comments,
		TeachComments: teachComments,
	}, nil
}

// SetSolved records the asker's solved decision. Only the asker may change it.
func (s *QuestionService) SetSolved(ctx context.Context, userID string, id uint, solved bool) error {
	question, err := s.repoManager.Question.GetByID(ctx, id)
	if err != nil {
		return notFound("question", err)
	}
	if question.UserID != userID {
		return ErrForbidden
	}

	if err := s.repoManager.Question.UpdateSolved(ctx, id, solved); err != nil {
		return notFound("question", err)
	}

	s.logger.WithFields(logrus.Fields{
		"question_id": id,
		"solved":      solved,
	}).Info("Question solved state updated")
	return nil
}
