package seeder

import (
	"context"
	"fmt"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogStore creates catalog rows that do not exist yet.
type CatalogStore interface {
	EnsureFaculty(ctx context.Context, name string) (*models.Faculty, bool, error)
	EnsureCourse(ctx context.Context, name string, facultyID uint) (*models.Course, bool, error)
}

// Result counts what a seeding run did.
type Result struct {
	FacultiesCreated int
	CoursesCreated   int
	CoursesExisting  int
	Errors           []error
}

type Seeder struct {
	store  CatalogStore
	logger *logrus.Logger
}

func NewSeeder(store CatalogStore, logger *logrus.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// Seed creates the missing faculties and courses of catalog. A failing course
// is recorded and skipped; a failing faculty skips its courses. With dryRun
// nothing is written and the catalog is only logged.
func (s *Seeder) Seed(ctx context.Context, catalog *Catalog, dryRun bool) (*Result, error) {
	result := &Result{}

	if dryRun {
		for _, faculty := range catalog.Faculties {
			for _, course := range faculty.Courses {
				s.logger.WithFields(logrus.Fields{
					"faculty": faculty.Name,
					"course":  course.Name,
					"code":    course.Code,
				}).Info("DRY RUN: Would ensure course")
			}
		}
		hash := catalog.Hash()
		s.logger.WithFields(logrus.Fields{
			"faculties": len(catalog.Faculties),
			"courses":   catalog.CourseCount(),
			"hash":      hash[:8],
		}).Info("DRY RUN: Catalog summary")
		return result, nil
	}

	for i, entry := range catalog.Faculties {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		faculty, created, err := s.store.EnsureFaculty(ctx, entry.Name)
		if err != nil {
			s.logger.WithError(err).WithField("faculty", entry.Name).Error("Failed to ensure faculty")
			result.Errors = append(result.Errors, fmt.Errorf("faculty %s: %w", entry.Name, err))
			continue
		}
		if created {
			result.FacultiesCreated++
		}

		for _, course := range entry.Courses {
			_, created, err := s.store.EnsureCourse(ctx, course.Name, faculty.ID)
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"faculty": entry.Name,
					"course":  course.Name,
				}).Error("Failed to ensure course")
				result.Errors = append(result.Errors, fmt.Errorf("course %s/%s: %w", entry.Name, course.Name, err))
				continue
			}
			if created {
				result.CoursesCreated++
			} else {
				result.CoursesExisting++
			}
		}

		s.logger.WithFields(logrus.Fields{
			"faculty":  entry.Name,
			"courses":  len(entry.Courses),
			"progress": fmt.Sprintf("%d/%d", i+1, len(catalog.Faculties)),
		}).Info("Faculty processed")
	}

	s.logger.WithFields(logrus.Fields{
		"faculties_created": result.FacultiesCreated,
		"courses_created":   result.CoursesCreated,
		"courses_existing":  result.CoursesExisting,
		"errors":            len(result.Errors),
	}).Info("Catalog seeding completed")

	return result, nil
}
