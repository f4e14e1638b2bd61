package services

import (
	"context"
	"strings"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/sirupsen/logrus"
)

type ProfileService struct {
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

func NewProfileService(repoManager *repository.RepositoryManager, logger *logrus.Logger) *ProfileService {
	return &ProfileService{
		repoManager: repoManager,
		logger:      logger,
	}
}

// Unresolved lists the caller's open questions with reply counts, newest first.
func (s *ProfileService) Unresolved(ctx context.Context, userID string) ([]models.UnresolvedQuestion, error) {
	questions, err := s.repoManager.Question.Search(ctx, models.QuestionFilter{
		UserID:       userID,
		UnsolvedOnly: true,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	comments, err := s.repoManager.Comment.CountByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	teachComments, err := s.repoManager.TeachComment.CountByQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]models.UnresolvedQuestion, len(questions))
	for i, q := range questions {
		c, tc := comments[q.ID], teachComments[q.ID]
		result[i] = models.UnresolvedQuestion{
			Question:       q,
			HasComments:    c.Total+tc.Total > 0,
			UnreadComments: c.Unread + tc.Unread,
		}
	}
	return result, nil
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repoManager.User.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("profile", err)
	}
	return user, nil
}

// Update creates or updates the caller's profile. The role is not editable.
func (s *ProfileService) Update(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if req.FacultyID != nil {
		if _, err := s.repoManager.Faculty.GetByID(ctx, *req.FacultyID); err != nil {
			return nil, notFound("faculty", err)
		}
	}

	user := &models.User{ID: userID, Name: name, FacultyID: req.FacultyID}
	if err := s.repoManager.User.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", userID).Info("Profile updated")
	return s.repoManager.User.GetByID(ctx, userID)
}

// Role returns the caller's role, defaulting to student for unknown users.
func (s *ProfileService) Role(ctx context.Context, userID string) (string, error) {
	user, err := s.repoManager.User.GetByID(ctx, userID)
	if repository.IsNotFound(err) {
		return models.RoleStudent, nil
	}
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
