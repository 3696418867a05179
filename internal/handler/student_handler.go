package handler

import (
	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/service"
)

// StudentHandler serves the student view routes.
type StudentHandler = ViewHandler[*service.StudentManager, dto.StudentForm, dto.StudentView]

// NewStudentHandler constructs a student handler.
func NewStudentHandler(views viewRegistry[*service.StudentManager], exports exportRenderer) *StudentHandler {
	return NewViewHandler[*service.StudentManager, dto.StudentForm, dto.StudentView](views, exports)
}
