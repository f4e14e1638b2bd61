package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SchemaMigration records a SQL file that has been applied.
type SchemaMigration struct {
	Name      string    `gorm:"primaryKey;type:varchar(255)"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type Runner struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewRunner(db *gorm.DB, logger *logrus.Logger) *Runner {
	return &Runner{
		db:     db,
		logger: logger,
	}
}

// RunMigrations auto-migrates the models, then applies the *.sql files in
// migrationsPath in lexical order. Files already recorded in
// schema_migrations are skipped; a missing directory means there is nothing
// to apply.
func (r *Runner) RunMigrations(migrationsPath string) error {
	r.logger.Info("Starting database migrations...")

	if err := r.db.AutoMigrate(append(models.All(), &SchemaMigration{})...); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	applied, err := r.runSQLMigrations(migrationsPath)
	if err != nil {
		return fmt.Errorf("SQL migrations failed: %w", err)
	}

	r.logger.WithField("applied", applied).Info("Database migrations completed successfully")
	return nil
}

func (r *Runner) runSQLMigrations(migrationsPath string) (int, error) {
	entries, err := os.ReadDir(migrationsPath)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.WithField("path", migrationsPath).Warn("Migrations directory not found, skipping SQL migrations")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	done, err := r.appliedMigrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, fileName := range sqlFiles {
		if done[fileName] {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsPath, fileName))
		if err != nil {
			return applied, err
		}

		err = r.db.Transaction(func(tx *gorm.DB) error {
			if err := r.execSQL(tx, fileName, string(content)); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Name: fileName}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("failed to run migration %s: %w", fileName, err)
		}

		applied++
		r.logger.WithField("file", fileName).Info("Migration executed successfully")
	}

	return applied, nil
}

func (r *Runner) appliedMigrations() (map[string]bool, error) {
	var rows []SchemaMigration
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}

	done := make(map[string]bool, len(rows))
	for _, row := range rows {
		done[row.Name] = true
	}
	return done, nil
}

// execSQL runs a file statement by statement. Files with dollar-quoted bodies
// cannot be split on semicolons and run as a single statement.
func (r *Runner) execSQL(tx *gorm.DB, fileName, content string) error {
	if strings.Contains(content, "$$") {
		r.logger.WithField("file", fileName).Debug("Executing SQL file with dollar-quoted functions")
		return tx.Exec(removeComments(content)).Error
	}

	for i, stmt := range splitStatements(content) {
		r.logger.WithFields(logrus.Fields{
			"file":      fileName,
			"statement": i + 1,
		}).Debug("Executing SQL statement")

		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}

// removeComments drops whole-line "--" comments.
func removeComments(sql string) string {
	var result []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}

// splitStatements splits on semicolons after removing comments and blank lines.
func splitStatements(sql string) []string {
	var lines []string
	for _, line := range strings.Split(removeComments(sql), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(lines, " "), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
