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
	id, err := uuid.NewV7()
	if err != nil {
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

// DatasetID identifies a loaded dataset by its content.
type DatasetID ID

func (id DatasetID) String() string { return ID(id).String() }
func (id DatasetID) IsEmpty() bool  { return ID(id).IsEmpty() }

// datasetNamespace scopes name-based dataset UUIDs.
var datasetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("adoptdash/dataset"))

// NewDatasetID derives a stable UUIDv5 from a content hash. The same bytes
// always yield the same identity, which makes the ID usable as a cache key.
func NewDatasetID(h Hash) DatasetID {
	return DatasetID(uuid.NewSHA1(datasetNamespace, []byte(h)).String())
}

// ParseDatasetID parses a string into DatasetID
func ParseDatasetID(s string) (DatasetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("dataset ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid dataset ID %q: %w", s, err)
	}
	return DatasetID(s), nil
}
