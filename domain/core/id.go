package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	CampaignID ID
	OrderID    ID
	PostID     ID
	Username   ID
)

// String conversions for domain IDs
func (id CampaignID) String() string { return ID(id).String() }
func (id OrderID) String() string    { return ID(id).String() }
func (id PostID) String() string     { return ID(id).String() }
func (id Username) String() string   { return ID(id).String() }

// ParseCampaignID parses a string into CampaignID
func ParseCampaignID(s string) (CampaignID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("campaign ID cannot be empty")
	}
	return CampaignID(s), nil
}

// ParseUsername parses a string into Username, normalizing the leading @
func ParseUsername(s string) (Username, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "@")
	if s == "" {
		return "", fmt.Errorf("username cannot be empty")
	}
	return Username(strings.ToLower(s)), nil
}
