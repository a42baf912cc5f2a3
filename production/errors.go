/*
errors.go - Error taxonomy for the production tracker

ERROR CATEGORIES:
  1. NotFound        - update of an id/sku that does not exist
  2. DuplicateKey    - item creation with an sku already in use
  3. Validation      - required fields or cross-field rules (checked by callers)
  4. Conflict        - stale header version on re-save
  5. Locked          - finalized day or billed job edited by a restricted role

Billing updates on a missing row are soft failures: logged, never returned.

USAGE:
  if errors.Is(err, production.ErrDuplicateKey) {
      // render inline next to the SKU field
  }
*/
package production

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrNotFound               = errors.New("not found")
	ErrDuplicateKey           = errors.New("duplicate key")
	ErrValidation             = errors.New("validation failed")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrDayLocked              = errors.New("day is finalized")
	ErrNegativeStock          = errors.New("stock quantity cannot be negative")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// NotFoundError names the collection and key that could not be resolved.
type NotFoundError struct {
	Kind string // "client", "item", "row"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DuplicateKeyError is returned when a natural key is already taken.
type DuplicateKeyError struct {
	Kind string
	Key  string
}

func (e *DuplicateKeyError) Error() string {
	if e.Kind == "item" {
		return fmt.Sprintf("SKU %s already exists", e.Key)
	}
	return fmt.Sprintf("%s %s already exists", e.Kind, e.Key)
}

func (e *DuplicateKeyError) Unwrap() error { return ErrDuplicateKey }

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ValidationErrors collects every field problem found in one pass.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() error { return ErrValidation }

// Err returns nil when no problems were collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// VersionConflictError reports a re-save against a stale header.
type VersionConflictError struct {
	Date     string
	Expected int
	Actual   int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("daily entry %s was modified: expected version %d, current %d",
		e.Date, e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error { return ErrConcurrentModification }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true for duplicate keys and stale versions.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrNegativeStock)
}
