package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ken2664/llm-question-app/internal/config"
	"github.com/Ken2664/llm-question-app/internal/database"
	"github.com/Ken2664/llm-question-app/internal/migration"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/Ken2664/llm-question-app/internal/seeder"
	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Command line flags
var (
	catalogURL  = flag.String("url", "", "Catalog or syllabus page listing faculties and courses")
	dryRun      = flag.Bool("dry-run", false, "Don't write to the database, just print what would be created")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	rootSel     = flag.String("root", "body", "CSS selector of the element containing the catalog")
	facultySel  = flag.String("faculty-selector", "h2", "CSS selector of faculty headings")
	courseSel   = flag.String("course-selector", "li", "CSS selector of course entries")
	timeout     = flag.Duration("timeout", 30*time.Second, "Request timeout")
	migrate     = flag.Bool("migrate", true, "Run migrations before seeding")
	allowErrors = flag.Bool("allow-errors", false, "Exit 0 even if some rows failed")
)

func main() {
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if *catalogURL == "" {
		logger.Fatal("-url is required")
	}

	logger.WithField("url", *catalogURL).Info("Starting course catalog seeder...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scraper := seeder.NewScraper(seeder.ScraperConfig{
		Selectors: seeder.Selectors{Root: *rootSel, Faculty: *facultySel, Course: *courseSel},
		Timeout:   *timeout,
	}, logger)

	catalog, err := scraper.Scrape(*catalogURL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to scrape catalog")
	}
	if len(catalog.Faculties) == 0 {
		logger.Warn("No faculties found, check the selectors")
		return
	}

	if *dryRun {
		if _, err := seeder.NewSeeder(nil, logger).Seed(ctx, catalog, true); err != nil {
			logger.WithError(err).Fatal("Dry run failed")
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dbManager, err := database.NewManager(ctx, &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Database.LogLevel,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if *migrate {
		if err := migration.NewRunner(dbManager.DB, logger).RunMigrations(cfg.Migrations.Path); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
	}

	// Going through the catalog service keeps the Redis listings in sync.
	catalogService := services.NewCatalogService(
		repository.NewRepositoryManager(dbManager.DB),
		database.NewCache(dbManager.Redis, logger),
		cfg.Cache.CatalogTTL,
		logger,
	)

	result, err := seeder.NewSeeder(catalogService, logger).Seed(ctx, catalog, false)
	if err != nil {
		logger.WithError(err).Fatal("Catalog seeding failed")
	}

	if len(result.Errors) > 0 {
		for _, err := range result.Errors {
			logger.WithError(err).Warn("Seeding error")
		}
		if !*allowErrors {
			logger.Fatal("Some catalog rows failed to seed")
		}
	}

	logger.Info("Catalog seeding completed successfully!")
}
