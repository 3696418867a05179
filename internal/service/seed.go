package service

import "github.com/noah-isme/academic-records-api/internal/models"

// SampleResults is persisted when no results collection exists.
func SampleResults() []models.Result {
	return []models.Result{
		{ID: 1, StudentName: "John Doe", Subject: "Mathematics", Marks: 95, ExamDate: "2024-03-15"},
		{ID: 2, StudentName: "Jane Smith", Subject: "Physics", Marks: 88, ExamDate: "2024-03-16"},
		{ID: 3, StudentName: "Mike Johnson", Subject: "Chemistry", Marks: 76, ExamDate: "2024-03-17"},
		{ID: 4, StudentName: "John Doe", Subject: "Physics", Marks: 82, ExamDate: "2024-03-18"},
		{ID: 5, StudentName: "Jane Smith", Subject: "Mathematics", Marks: 92, ExamDate: "2024-03-19"},
	}
}

// SampleSections is persisted when no sections collection exists.
func SampleSections() []models.Section {
	return []models.Section{
		{ID: 1, Name: "Computer Science", Description: "Study of computation, programming, and software development"},
		{ID: 2, Name: "Mathematics", Description: "Advanced mathematical concepts and problem-solving techniques"},
		{ID: 3, Name: "Physics", Description: "Exploration of matter, energy, and the fundamental laws of nature"},
		{ID: 4, Name: "Chemistry", Description: "Study of chemical reactions, elements, and molecular structures"},
	}
}

// SampleStudents is persisted when no students collection exists.
func SampleStudents() []models.Student {
	return []models.Student{
		{ID: 1, Name: "Aditya Kumar Sharma", Email: "Aditya@gmail.com", Section: "Computer Science", EnrollmentDate: "2024-01-15"},
		{ID: 2, Name: "Shreshti Mittal", Email: "Shreshti@gmail.com", Section: "Mathematics", EnrollmentDate: "2024-01-20"},
		{ID: 3, Name: "Anirudh Singh", Email: "Anirudh@gmail.com", Section: "Physics", EnrollmentDate: "2024-02-01"},
	}
}

// DefaultSectionNames fills the student section dropdown when no sections are
// persisted. They are never written back.
func DefaultSectionNames() []string {
	return []string{"Computer Science", "Mathematics", "Physics", "Chemistry"}
}
