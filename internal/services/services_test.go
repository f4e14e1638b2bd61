package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Ken2664/llm-question-app/internal/database"
	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/repository"
	"github.com/Ken2664/llm-question-app/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process stand-in for the Redis catalog cache.
type memoryCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	gets        int
	hits        int
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	data, ok := c.data[key]
	if !ok {
		return database.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = data
	return nil
}

func (c *memoryCache) InvalidateCatalog(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.data = map[string][]byte{}
	return nil
}

type env struct {
	repos     *repository.RepositoryManager
	cache     *memoryCache
	catalog   *CatalogService
	questions *QuestionService
	comments  *CommentService
	profiles  *ProfileService
	teachers  *TeacherService
}

func newEnv(t *testing.T) *env {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	repos := repository.NewRepositoryManager(testutil.NewDB(t))
	cache := newMemoryCache()
	catalog := NewCatalogService(repos, cache, time.Minute, logger)

	return &env{
		repos:     repos,
		cache:     cache,
		catalog:   catalog,
		questions: NewQuestionService(repos, catalog, logger),
		comments:  NewCommentService(repos, logger),
		profiles:  NewProfileService(repos, logger),
		teachers:  NewTeacherService(repos, cache, logger),
	}
}

func (e *env) course(t *testing.T, faculty, course string) *models.Course {
	ctx := context.Background()
	f, _, err := e.catalog.EnsureFaculty(ctx, faculty)
	require.NoError(t, err)
	c, _, err := e.catalog.EnsureCourse(ctx, course, f.ID)
	require.NoError(t, err)
	return c
}

func (e *env) ask(t *testing.T, userID string, courseID uint, date, text string) *models.Question {
	q, err := e.questions.Submit(context.Background(), userID, models.CreateQuestionRequest{
		Question:    text,
		Answer:      "generated answer",
		CourseID:    courseID,
		LectureDate: date,
	})
	require.NoError(t, err)
	return q
}

func TestCatalogService_CacheAndInvalidate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.catalog.CreateFaculty(ctx, "Engineering")
	require.NoError(t, err)

	first, err := e.catalog.ListFaculties(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := e.catalog.ListFaculties(ctx)
	require.NoError(t, err)
	assert.Equal(t, first[0].Name, second[0].Name)
	assert.Equal(t, 1, e.cache.hits)

	_, err = e.catalog.CreateFaculty(ctx, "Science")
	require.NoError(t, err)
	assert.Equal(t, 2, e.cache.invalidated)

	third, err := e.catalog.ListFaculties(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
}

func TestCatalogService_Conflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	faculty, err := e.catalog.CreateFaculty(ctx, "Engineering")
	require.NoError(t, err)

	_, err = e.catalog.CreateFaculty(ctx, " Engineering ")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.catalog.CreateCourse(ctx, "Calculus I", faculty.ID)
	require.NoError(t, err)
	_, err = e.catalog.CreateCourse(ctx, "Calculus I", faculty.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.catalog.CreateCourse(ctx, "Physics", 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.catalog.CreateFaculty(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCatalogService_Courses(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	calc := e.course(t, "Engineering", "Calculus I")
	e.course(t, "Science", "Physics")

	courses, err := e.catalog.ListCourses(ctx, &calc.FacultyID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Calculus I", courses[0].Name)

	all, err := e.catalog.ListCourses(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogService_Lectures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.course(t, "Engineering", "Calculus I")

	lecture, created, err := e.catalog.GetOrCreateLecture(ctx, course.ID, "2024-04-10")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := e.catalog.GetOrCreateLecture(ctx, course.ID, "2024-04-10")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, lecture.ID, again.ID)

	_, _, err = e.catalog.GetOrCreateLecture(ctx, course.ID, "April 10")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = e.catalog.GetOrCreateLecture(ctx, 999, "2024-04-10")
	assert.ErrorIs(t, err, ErrNotFound)

	lectures, err := e.catalog.ListLectures(ctx, course.ID)
	require.NoError(t, err)
	assert.Len(t, lectures, 1)
}

func TestQuestionService_SubmitAndSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.course(t, "Engineering", "Calculus I")

	q := e.ask(t, "alice", course.ID, "2024-04-10", "  What is a derivative?  ")
	assert.Equal(t, "What is a derivative?", q.QuestionText)
	assert.False(t, q.Solved)
	require.NotNil(t, q.Lecture)
	assert.Equal(t, "2024-04-10", q.Lecture.Date)

	e.ask(t, "bob", course.ID, "2024-04-10", "Explain limits")

	found, err := e.questions.Search(ctx, models.QuestionFilter{CourseID: &course.ID, Keyword: "DERIVATIVE"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, q.ID, found[0].ID)

	_, err = e.questions.Search(ctx, models.QuestionFilter{LectureDate: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.questions.Submit(ctx, "alice", models.CreateQuestionRequest{Question: " ", CourseID: course.ID, LectureDate: "2024-04-10"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestQuestionService_SetSolved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.course(t, "Engineering", "Calculus I")
	q := e.ask(t, "alice", course.ID, "2024-04-10", "What is a derivative?")

	assert.ErrorIs(t, e.questions.SetSolved(ctx, "bob", q.ID, true), ErrForbidden)
	assert.ErrorIs(t, e.questions.SetSolved(ctx, "alice", 999, true), ErrNotFound)
	require.NoError(t, e.questions.SetSolved(ctx, "alice", q.ID, true))

	detail, err := e.questions.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, detail.Question.Solved)
	assert.Empty(t, detail.Comments)
}

func TestCommentService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.course(t, "Engineering", "Calculus I")
	q := e.ask(t, "alice", course.ID, "2024-04-10", "What is a derivative?")

	comment, err := e.comments.Add(ctx, "bob", q.ID, "Use the limit definition")
	require.NoError(t, err)

	_, err = e.comments.Add(ctx, "bob", 999, "lost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.comments.Add(ctx, "bob", q.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, e.comments.MarkRead(ctx, "bob", comment.ID), ErrForbidden)
	require.NoError(t, e.comments.MarkRead(ctx, "alice", comment.ID))

	comments, err := e.comments.List(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].Read)

	teach, err := e.comments.AddTeach(ctx, "prof", q.ID, "See chapter 2")
	require.NoError(t, err)
	require.NoError(t, e.comments.MarkTeachRead(ctx, "alice", teach.ID))

	teachComments, err := e.comments.ListTeach(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, teachComments, 1)
	assert.True(t, teachComments[0].Read)
}

func TestProfileService_Unresolved(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.course(t, "Engineering", "Calculus I")

	open := e.ask(t, "alice", course.ID, "2024-04-10", "Open question")
	quiet := e.ask(t, "alice", course.ID, "2024-04-10", "Quiet question")
	done := e.ask(t, "alice", course.ID, "2024-04-10", "Done question")
	require.NoError(t, e.questions.SetSolved(ctx, "alice", done.ID, true))
	e.ask(t, "bob", course.ID, "2024-04-10", "Someone else's")

	_, err := e.comments.Add(ctx, "bob", open.ID, "reply")
	require.NoError(t, err)
	_, err = e.comments.AddTeach(ctx, "prof", open.ID, "teacher reply")
	require.NoError(t, err)

	list, err := e.profiles.Unresolved(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[uint]models.UnresolvedQuestion{}
	for _, item := range list {
		byID[item.ID] = item
	}
	assert.True(t, byID[open.ID].HasComments)
	assert.Equal(t, int64(2), byID[open.ID].UnreadComments)
	assert.False(t, byID[quiet.ID].HasComments)
	assert.Equal(t, int64(0), byID[quiet.ID].UnreadComments)
}

func TestProfileService_UpdateAndRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	course := e.course(t, "Engineering", "Calculus I")

	role, err := e.profiles.Role(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, role)

	user, err := e.profiles.Update(ctx, "alice", models.UpdateProfileRequest{Name: "Alice", FacultyID: &course.FacultyID})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, models.RoleStudent, user.Role)

	missing := uint(999)
	_, err = e.profiles.Update(ctx, "alice", models.UpdateProfileRequest{Name: "Alice", FacultyID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.profiles.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeacherService_ClaimRefreshesCourseListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	calc := e.course(t, "Engineering", "Calculus I")

	before, err := e.catalog.ListCourses(ctx, &calc.FacultyID)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Nil(t, before[0].TeacherID)

	invalidated := e.cache.invalidated
	_, err = e.teachers.ClaimCourse(ctx, "teacher-1", calc.ID)
	require.NoError(t, err)
	assert.Equal(t, invalidated+1, e.cache.invalidated)

	after, err := e.catalog.ListCourses(ctx, &calc.FacultyID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.NotNil(t, after[0].TeacherID)
	assert.Equal(t, "teacher-1", *after[0].TeacherID)

	_, err = e.teachers.ClaimCourse(ctx, "teacher-2", calc.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTeacherService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	calc := e.course(t, "Engineering", "Calculus I")
	algebra := e.course(t, "Engineering", "Linear Algebra")
	e.course(t, "Engineering", "Unowned")

	_, err := e.teachers.ClaimCourse(ctx, "prof", calc.ID)
	require.NoError(t, err)
	_, err = e.teachers.ClaimCourse(ctx, "prof", algebra.ID)
	require.NoError(t, err)
	_, err = e.teachers.ClaimCourse(ctx, "other", calc.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = e.teachers.ClaimCourse(ctx, "prof", 999)
	assert.ErrorIs(t, err, ErrNotFound)

	owned, err := e.teachers.ClaimCourse(ctx, "prof", calc.ID)
	require.NoError(t, err)
	require.NotNil(t, owned.TeacherID)
	assert.Equal(t, "prof", *owned.TeacherID)

	e.ask(t, "alice", calc.ID, "2024-04-10", "Open")
	solved := e.ask(t, "alice", calc.ID, "2024-04-10", "Closed")
	require.NoError(t, e.questions.SetSolved(ctx, "alice", solved.ID, true))

	groups, err := e.teachers.Unresolved(ctx, "prof")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	counts := map[string]int{}
	for _, g := range groups {
		counts[g.Course.Name] = len(g.Questions)
	}
	assert.Equal(t, map[string]int{"Calculus I": 1, "Linear Algebra": 0}, counts)
}
