package dto

import "github.com/noah-isme/academic-records-api/internal/models"

// ResultRow is one rendered result line.
type ResultRow struct {
	ID              int64        `json:"id"`
	StudentName     string       `json:"studentName"`
	Subject         string       `json:"subject"`
	Marks           int          `json:"marks"`
	Grade           models.Grade `json:"grade"`
	ExamDate        string       `json:"examDate"`
	ExamDateDisplay string       `json:"examDateDisplay"`
}

// ResultFilterOptions feeds the two filter dropdowns.
type ResultFilterOptions struct {
	Students []string `json:"students"`
	Subjects []string `json:"subjects"`
}

// ResultView is the full render of a results view.
type ResultView struct {
	Rows           []ResultRow         `json:"rows"`
	Placeholder    string              `json:"placeholder,omitempty"`
	Total          int                 `json:"total"`
	Filter         models.ResultFilter `json:"filter"`
	FilterOptions  ResultFilterOptions `json:"filterOptions"`
	StudentOptions []string            `json:"studentOptions"`
	Modal          models.ModalState   `json:"modal"`
	Form           models.Result       `json:"form"`
	DeleteDialog   models.DeleteDialog `json:"deleteDialog"`
	Notification   models.Notification `json:"notification"`
}

// SectionRow is one rendered section line.
type SectionRow struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	StudentCount int    `json:"studentCount"`
}

// SectionView is the full render of a sections view.
type SectionView struct {
	Rows         []SectionRow        `json:"rows"`
	Placeholder  string              `json:"placeholder,omitempty"`
	Total        int                 `json:"total"`
	Modal        models.ModalState   `json:"modal"`
	Form         models.Section      `json:"form"`
	DeleteDialog models.DeleteDialog `json:"deleteDialog"`
	Notification models.Notification `json:"notification"`
}

// StudentRow is one rendered student line.
type StudentRow struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Section               string `json:"section"`
	EnrollmentDate        string `json:"enrollmentDate"`
	EnrollmentDateDisplay string `json:"enrollmentDateDisplay"`
}

// StudentView is the full render of a students view.
type StudentView struct {
	Rows           []StudentRow        `json:"rows"`
	Placeholder    string              `json:"placeholder,omitempty"`
	Total          int                 `json:"total"`
	SectionOptions []string            `json:"sectionOptions"`
	Modal          models.ModalState   `json:"modal"`
	Form           models.Student      `json:"form"`
	DeleteDialog   models.DeleteDialog `json:"deleteDialog"`
	Notification   models.Notification `json:"notification"`
}
