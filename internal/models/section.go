package models

// Section is an academic section. Students reference it by Name.
type Section struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RecordID implements Record.
func (s Section) RecordID() int64 { return s.ID }
