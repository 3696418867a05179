package models

// Student is an enrolled learner. Section holds the section name, not its id.
type Student struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Section        string `json:"section"`
	EnrollmentDate string `json:"enrollmentDate"`
}

// RecordID implements Record.
func (s Student) RecordID() int64 { return s.ID }
