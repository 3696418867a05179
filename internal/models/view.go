package models

// ModalMode distinguishes create and edit submissions.
type ModalMode string

const (
	ModalModeCreate ModalMode = "create"
	ModalModeEdit   ModalMode = "edit"
)

// ModalState describes the record form dialog.
type ModalState struct {
	Open        bool      `json:"open"`
	Mode        ModalMode `json:"mode,omitempty"`
	Title       string    `json:"title,omitempty"`
	SubmitLabel string    `json:"submitLabel,omitempty"`
	EditingID   *int64    `json:"editingId,omitempty"`
}

// DeleteDialog describes the delete confirmation dialog.
type DeleteDialog struct {
	Open      bool   `json:"open"`
	PendingID *int64 `json:"pendingId,omitempty"`
}

// Notification is the transient message banner.
type Notification struct {
	Visible bool   `json:"visible"`
	Message string `json:"message,omitempty"`
}

// EmptyPlaceholder is rendered as the only row of an empty table.
const EmptyPlaceholder = "No records found"
