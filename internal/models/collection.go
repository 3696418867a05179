package models

// Collection keys used by the persistent store.
const (
	CollectionResults  = "results"
	CollectionSections = "sections"
	CollectionStudents = "students"
)

// DateLayout is the persisted layout for date-only fields.
const DateLayout = "2006-01-02"

// Record is implemented by every persisted entity.
type Record interface {
	RecordID() int64
}
