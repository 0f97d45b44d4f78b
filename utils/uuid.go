package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a fresh UUID string. Used for user, product and bid ids.
func GenerateID() string {
	return uuid.New().String()
}
