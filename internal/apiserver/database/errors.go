package database

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrInvalidDatabaseType is returned for an unsupported database type
	ErrInvalidDatabaseType = errors.New("invalid database type")
)

// IsNotFound reports whether err is a record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
