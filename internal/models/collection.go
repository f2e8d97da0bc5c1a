package models

import "time"

// Collection is the personal list saved for one fingerprint
type Collection struct {
	ID          int64     `json:"id"`
	Fingerprint string    `json:"-"`
	ToolIDs     []string  `json:"toolIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SharedCollection is a public, content-addressed list of tools. ToolHash is
// the order-independent digest of ToolIDs and is unique.
type SharedCollection struct {
	ID        string    `json:"id"`
	ToolIDs   []string  `json:"toolIds"`
	ToolHash  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}
