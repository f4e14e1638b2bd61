package handlers

import (
	"net/http"

	"github.com/Ken2664/llm-question-app/internal/models"
	"github.com/Ken2664/llm-question-app/internal/services"
	"github.com/Ken2664/llm-question-app/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	catalog *services.CatalogService
	logger  *logrus.Logger
}

func NewCatalogHandler(catalog *services.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) ListFaculties(c *gin.Context) {
	faculties, err := h.catalog.ListFaculties(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list faculties", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Faculties retrieved", faculties)
}

func (h *CatalogHandler) CreateFaculty(c *gin.Context) {
	var req models.CreateFacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid faculty format", err)
		return
	}

	faculty, err := h.catalog.CreateFaculty(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to create faculty", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Faculty created", faculty)
}

func (h *CatalogHandler) ListCourses(c *gin.Context) {
	facultyID, ok := queryID(c, "faculty_id")
	if !ok {
		return
	}

	courses, err := h.catalog.ListCourses(c.Request.Context(), facultyID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list courses", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Courses retrieved", courses)
}

func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid course format", err)
		return
	}

	course, err := h.catalog.CreateCourse(c.Request.Context(), req.Name, req.FacultyID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to create course", err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, "Course created", course)
}

func (h *CatalogHandler) ListLectures(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	lectures, err := h.catalog.ListLectures(c.Request.Context(), courseID)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to list lectures", err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Lectures retrieved", lectures)
}

// GetOrCreateLecture answers 201 when the lecture was created and 200 when it
// already existed.
func (h *CatalogHandler) GetOrCreateLecture(c *gin.Context) {
	var req models.CreateLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid lecture format", err)
		return
	}

	lecture, created, err := h.catalog.GetOrCreateLecture(c.Request.Context(), req.CourseID, req.Date)
	if err != nil {
		respondServiceError(c, h.logger, "Failed to resolve lecture", err)
		return
	}

	if created {
		utils.SuccessResponse(c, http.StatusCreated, "Lecture created", lecture)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Lecture found", lecture)
}
