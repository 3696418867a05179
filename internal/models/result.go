package models

// Result is one examination mark. StudentName and Subject are free-text copies.
type Result struct {
	ID          int64  `json:"id"`
	StudentName string `json:"studentName"`
	Subject     string `json:"subject"`
	Marks       int    `json:"marks"`
	ExamDate    string `json:"examDate"`
}

// RecordID implements Record.
func (r Result) RecordID() int64 { return r.ID }

// ResultFilter narrows the visible results. Empty fields match everything.
type ResultFilter struct {
	StudentName string `json:"studentName"`
	Subject     string `json:"subject"`
}

// Grade is the letter band computed from marks.
type Grade struct {
	Letter     string `json:"letter"`
	StyleClass string `json:"styleClass"`
}
