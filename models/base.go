package models

import "github.com/google/uuid"

// NormalizeID returns id when it is a valid UUID and a fresh one otherwise.
// Records imported from older tools carry ids like "item-1712"; those get replaced on save.
func NormalizeID(id string) string {
	if _, err := uuid.Parse(id); err != nil {
		return uuid.NewString()
	}
	return id
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
