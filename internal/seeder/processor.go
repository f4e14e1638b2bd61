package seeder

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/Ken2664/llm-question-app/pkg/utils"
)

// CourseEntry is one course listed under a faculty heading.
type CourseEntry struct {
	Name string
	Code string
}

// FacultyEntry is a faculty heading and the courses found below it.
type FacultyEntry struct {
	Name    string
	Courses []CourseEntry
}

// Catalog is the normalised result of one scrape, in page order.
type Catalog struct {
	Faculties []FacultyEntry
}

// CourseCount returns the number of courses across all faculties.
func (c *Catalog) CourseCount() int {
	n := 0
	for _, f := range c.Faculties {
		n += len(f.Courses)
	}
	return n
}

// Hash fingerprints the catalog so repeated runs can be compared in logs.
func (c *Catalog) Hash() string {
	var parts []string
	for _, f := range c.Faculties {
		for _, course := range f.Courses {
			parts = append(parts, f.Name+"/"+course.Name)
		}
	}
	sort.Strings(parts)
	return utils.MD5Hash(strings.Join(parts, "\n"))
}

// CatalogProcessor cleans scraped names and collects them into a Catalog,
// dropping duplicates.
type CatalogProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	courseCode      *regexp.Regexp
	facultyNumber   *regexp.Regexp

	catalog   Catalog
	faculties map[string]int
	courses   map[string]bool
}

func NewCatalogProcessor() *CatalogProcessor {
	return &CatalogProcessor{
		multiWhitespace: regexp.MustCompile(`\s+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		// [MATH101], (CS-201), 【PHYS 110A】, （EC101）
		courseCode:    regexp.MustCompile(`[\[(（【]\s*([A-Za-z]{2,}[-\s]?\d{2,}[A-Za-z]?)\s*[\])）】]`),
		facultyNumber: regexp.MustCompile(`^\d+[.)．]\s*`),
		faculties:     make(map[string]int),
		courses:       make(map[string]bool),
	}
}

// CleanName strips markup, collapses whitespace (full-width spaces included)
// and trims the result.
func (cp *CatalogProcessor) CleanName(raw string) string {
	name := cp.htmlTags.ReplaceAllString(raw, "")
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, name)
	name = cp.multiWhitespace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// FacultyName cleans a heading and drops a leading list number ("1. ").
func (cp *CatalogProcessor) FacultyName(raw string) string {
	return strings.TrimSpace(cp.facultyNumber.ReplaceAllString(cp.CleanName(raw), ""))
}

// CourseName splits a bracketed course code off the course title.
func (cp *CatalogProcessor) CourseName(raw string) CourseEntry {
	name := cp.CleanName(raw)

	var code string
	if m := cp.courseCode.FindStringSubmatch(name); m != nil {
		code = strings.ToUpper(cp.multiWhitespace.ReplaceAllString(m[1], ""))
		name = cp.CleanName(strings.Replace(name, m[0], " ", 1))
	}
	name = strings.Trim(name, " -:：")

	return CourseEntry{Name: name, Code: code}
}

// AddFaculty registers a faculty heading and returns its normalised name.
// Empty names return "".
func (cp *CatalogProcessor) AddFaculty(raw string) string {
	name := cp.FacultyName(raw)
	if name == "" {
		return ""
	}

	key := utils.CacheKey(name)
	if _, ok := cp.faculties[key]; !ok {
		cp.faculties[key] = len(cp.catalog.Faculties)
		cp.catalog.Faculties = append(cp.catalog.Faculties, FacultyEntry{Name: name})
	}
	return name
}

// AddCourse records a course under a faculty previously passed to
// AddFaculty. It reports false for empty names, unknown faculties and
// duplicates.
func (cp *CatalogProcessor) AddCourse(faculty, raw string) bool {
	idx, ok := cp.faculties[utils.CacheKey(faculty)]
	if !ok {
		return false
	}

	course := cp.CourseName(raw)
	if course.Name == "" {
		return false
	}

	key := utils.CacheKey(faculty, course.Name)
	if cp.courses[key] {
		return false
	}
	cp.courses[key] = true

	cp.catalog.Faculties[idx].Courses = append(cp.catalog.Faculties[idx].Courses, course)
	return true
}

// Catalog returns everything collected so far.
func (cp *CatalogProcessor) Catalog() *Catalog {
	return &cp.catalog
}
