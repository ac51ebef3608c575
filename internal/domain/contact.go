package domain

import "time"

// Contact status constants.
const (
	ContactPending   = "pending"
	ContactContacted = "contacted"
	ContactCompleted = "completed"
)

// Contact is a visitor inquiry left through the contact form.
type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Message     string    `json:"message"`
	ProductID   *string   `json:"product_id,omitempty"`
	ProductName *string   `json:"product_name,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ValidContactStatuses() []string {
	return []string{ContactPending, ContactContacted, ContactCompleted}
}

func IsValidContactStatus(s string) bool {
	switch s {
	case ContactPending, ContactContacted, ContactCompleted:
		return true
	}
	return false
}

// Contact event types.
const (
	ContactCreatedEvent = "contact.created"
	ContactUpdatedEvent = "contact.updated"
)

// ContactChange is the payload of contact events. OldStatus is empty for inserts.
type ContactChange struct {
	Contact   Contact `json:"contact"`
	OldStatus string  `json:"old_status,omitempty"`
}
