package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Session errors
	ErrMsgAuthentication = "authentication failed"
	ErrMsgValidation     = "invalid message payload"
	ErrMsgNotAuthorized  = "only the world owner may do that"

	// Crop errors
	ErrMsgPositionOccupied       = "position is already occupied"
	ErrMsgInvalidSeedType        = "invalid seed type"
	ErrMsgInsufficientInvestment = "insufficient investment"
	ErrMsgCropNotFound           = "crop not found"
	ErrMsgCropNotReady           = "crop is not ready to harvest"
	ErrMsgCropAlreadyHarvested   = "crop already harvested"
	ErrMsgNotOwner               = "crop belongs to another player"

	// Player errors
	ErrMsgPlayerNotFound = "player not found"

	// Database/System errors
	ErrMsgPersistence = "database error"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrAuthentication = errors.New(ErrMsgAuthentication)
	ErrValidation     = errors.New(ErrMsgValidation)
	ErrNotAuthorized  = errors.New(ErrMsgNotAuthorized)

	ErrPositionOccupied       = errors.New(ErrMsgPositionOccupied)
	ErrInvalidSeedType        = errors.New(ErrMsgInvalidSeedType)
	ErrInsufficientInvestment = errors.New(ErrMsgInsufficientInvestment)
	ErrCropNotFound           = errors.New(ErrMsgCropNotFound)
	ErrCropNotReady           = errors.New(ErrMsgCropNotReady)
	ErrCropAlreadyHarvested   = errors.New(ErrMsgCropAlreadyHarvested)
	ErrNotOwner               = errors.New(ErrMsgNotOwner)

	ErrPlayerNotFound = errors.New(ErrMsgPlayerNotFound)

	ErrPersistence = errors.New(ErrMsgPersistence)
)

// CropNotReadyError reports how long a crop still needs before it can be harvested.
type CropNotReadyError struct {
	CropID    string
	Remaining time.Duration
}

func (e *CropNotReadyError) Error() string {
	return fmt.Sprintf("%s: %s remaining", ErrMsgCropNotReady, e.Remaining.Round(time.Second))
}

// Is makes errors.Is(err, ErrCropNotReady) match.
func (e *CropNotReadyError) Is(target error) bool {
	return target == ErrCropNotReady
}

// InsufficientInvestmentError carries the minimum the seed type requires.
type InsufficientInvestmentError struct {
	SeedType SeedType
	Minimum  float64
	Got      float64
}

func (e *InsufficientInvestmentError) Error() string {
	return fmt.Sprintf("Minimum investment for %s is %g", e.SeedType, e.Minimum)
}

func (e *InsufficientInvestmentError) Is(target error) bool {
	return target == ErrInsufficientInvestment
}

// PersistenceError wraps a store-level failure (constraint, lock, serialization, connectivity)
// raised while running a ledger operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMsgPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceError wraps err unless it already is a PersistenceError.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
