package seeder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseName(t *testing.T) {
	cp := NewCatalogProcessor()

	tests := []struct {
		raw  string
		want CourseEntry
	}{
		{"Calculus I [MATH101]", CourseEntry{Name: "Calculus I", Code: "MATH101"}},
		{"(CS-201) Intro to Programming", CourseEntry{Name: "Intro to Programming", Code: "CS-201"}},
		{"【PHYS 110A】 力学", CourseEntry{Name: "力学", Code: "PHYS110A"}},
		{"  Linear\n\tAlgebra  ", CourseEntry{Name: "Linear Algebra"}},
		{"Statistics (2024)", CourseEntry{Name: "Statistics (2024)"}},
		{"<b>Organic</b> Chemistry", CourseEntry{Name: "Organic Chemistry"}},
		{"EC101 - ", CourseEntry{Name: "EC101"}},
		{"[MATH101]", CourseEntry{Code: "MATH101"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, cp.CourseName(tt.raw))
		})
	}
}

func TestFacultyName(t *testing.T) {
	cp := NewCatalogProcessor()

	assert.Equal(t, "Faculty of Science", cp.FacultyName("1. Faculty of Science"))
	assert.Equal(t, "工学部", cp.FacultyName("　工学部　"))
	assert.Equal(t, "", cp.FacultyName("   "))
}

func TestCatalogProcessor_Dedupes(t *testing.T) {
	cp := NewCatalogProcessor()

	science := cp.AddFaculty("Science")
	assert.True(t, cp.AddCourse(science, "Calculus I [MATH101]"))
	assert.False(t, cp.AddCourse(science, "calculus i"))
	assert.False(t, cp.AddCourse(science, "   "))
	assert.False(t, cp.AddCourse("Unknown", "Physics"))

	// Repeated heading continues the same faculty.
	assert.Equal(t, "Science", cp.AddFaculty(" Science "))
	assert.True(t, cp.AddCourse("Science", "Physics"))

	law := cp.AddFaculty("Law")
	assert.True(t, cp.AddCourse(law, "Calculus I"))

	catalog := cp.Catalog()
	assert.Equal(t, []FacultyEntry{
		{Name: "Science", Courses: []CourseEntry{{Name: "Calculus I", Code: "MATH101"}, {Name: "Physics"}}},
		{Name: "Law", Courses: []CourseEntry{{Name: "Calculus I"}}},
	}, catalog.Faculties)
	assert.Equal(t, 3, catalog.CourseCount())
}

func TestCatalogHash_OrderIndependent(t *testing.T) {
	a := &Catalog{Faculties: []FacultyEntry{
		{Name: "Science", Courses: []CourseEntry{{Name: "Physics"}, {Name: "Chemistry"}}},
	}}
	b := &Catalog{Faculties: []FacultyEntry{
		{Name: "Science", Courses: []CourseEntry{{Name: "Chemistry"}, {Name: "Physics"}}},
	}}
	c := &Catalog{Faculties: []FacultyEntry{
		{Name: "Science", Courses: []CourseEntry{{Name: "Physics"}}},
	}}

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Len(t, a.Hash(), 32)
}
