package seeder

import (
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

const userAgent = "LLMQuestionApp-CatalogBot/1.0"

// Selectors locate faculty headings and course items on a catalog page.
// Both are matched within Root in document order; a course belongs to the
// nearest faculty heading above it.
type Selectors struct {
	Root    string
	Faculty string
	Course  string
}

func DefaultSelectors() Selectors {
	return Selectors{Root: "body", Faculty: "h2", Course: "li"}
}

type ScraperConfig struct {
	Selectors Selectors
	Timeout   time.Duration
	Delay     time.Duration
}

type Scraper struct {
	config ScraperConfig
	logger *logrus.Logger
}

func NewScraper(config ScraperConfig, logger *logrus.Logger) *Scraper {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Selectors == (Selectors{}) {
		config.Selectors = DefaultSelectors()
	}
	return &Scraper{config: config, logger: logger}
}

// Scrape fetches pageURL and returns the normalised catalog it lists.
func (s *Scraper) Scrape(pageURL string) (*Catalog, error) {
	target, err := url.Parse(pageURL)
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("invalid catalog url %q", pageURL)
	}

	c := colly.NewCollector(colly.UserAgent(userAgent))
	c.SetRequestTimeout(s.config.Timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       s.config.Delay,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure collector: %w", err)
	}

	processor := NewCatalogProcessor()
	sel := s.config.Selectors
	var processingError error
	var matchedRoot bool

	c.OnHTML(sel.Root, func(e *colly.HTMLElement) {
		matchedRoot = true
		s.extract(e.DOM, sel, processor)
	})

	c.OnError(func(r *colly.Response, err error) {
		processingError = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(target.String()); err != nil {
		return nil, fmt.Errorf("failed to visit page: %w", err)
	}
	c.Wait()

	if processingError != nil {
		return nil, fmt.Errorf("processing error: %w", processingError)
	}
	if !matchedRoot {
		return nil, fmt.Errorf("no element matches root selector %q", sel.Root)
	}

	catalog := processor.Catalog()
	s.logger.WithFields(logrus.Fields{
		"url":       target.String(),
		"faculties": len(catalog.Faculties),
		"courses":   catalog.CourseCount(),
	}).Info("Catalog extracted")

	return catalog, nil
}

func (s *Scraper) extract(root *goquery.Selection, sel Selectors, processor *CatalogProcessor) {
	current := ""
	root.Find(sel.Faculty + ", " + sel.Course).Each(func(i int, item *goquery.Selection) {
		if item.Is(sel.Faculty) {
			current = processor.AddFaculty(item.Text())
			s.logger.WithFields(logrus.Fields{
				"faculty": current,
				"tag":     goquery.NodeName(item),
			}).Debug("Faculty heading")
			return
		}

		if current == "" {
			s.logger.WithField("text", processor.CleanName(item.Text())).Debug("Skipping course outside any faculty")
			return
		}
		if !processor.AddCourse(current, item.Text()) {
			s.logger.WithFields(logrus.Fields{
				"faculty": current,
				"text":    processor.CleanName(item.Text()),
			}).Debug("Skipping empty or duplicate course")
		}
	})
}
