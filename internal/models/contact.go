package models

import "time"

// ContactStatus tracks triage of a contact message
type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusArchived ContactStatus = "archived"
)

// Contact is a message submitted through the contact form
type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
