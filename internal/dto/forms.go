package dto

// ResultForm is the result modal payload. Nil fields keep the edited record's value.
type ResultForm struct {
	StudentName *string `json:"studentName"`
	Subject     *string `json:"subject"`
	Marks       *int    `json:"marks" validate:"omitempty,gte=0,lte=100"`
	ExamDate    *string `json:"examDate" validate:"omitempty,isodate"`
}

// SectionForm is the section modal payload.
type SectionForm struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// StudentForm is the student modal payload.
type StudentForm struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Section        *string `json:"section"`
	EnrollmentDate *string `json:"enrollmentDate" validate:"omitempty,isodate"`
}

// DeleteRequest stages a record for deletion.
type DeleteRequest struct {
	ID *int64 `json:"id" binding:"required"`
}
