package domain

import (
	"errors"
)

// Game error codes sent to clients in game_error replies.
const (
	CodeAuthenticationFailed   = "AUTHENTICATION_FAILED"
	CodeValidationError        = "VALIDATION_ERROR"
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodePositionOccupied       = "POSITION_OCCUPIED"
	CodeInvalidSeedType        = "INVALID_SEED_TYPE"
	CodeInsufficientInvestment = "INSUFFICIENT_INVESTMENT"
	CodeCropNotFound           = "CROP_NOT_FOUND"
	CodeCropNotReady           = "CROP_NOT_READY"
	CodeCropAlreadyHarvested   = "CROP_ALREADY_HARVESTED"
	CodeNotOwner               = "NOT_OWNER"
	CodeDatabaseError          = "DATABASE_ERROR"
	CodeInternalError          = "INTERNAL_ERROR"
)

// GameError is the structured error reply a client maps to a UI message.
type GameError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e GameError) Error() string {
	return e.Code + ": " + e.Message
}

// ToGameError converts an error from the taxonomy into its wire form.
// Unknown errors become INTERNAL_ERROR without leaking their text.
func ToGameError(err error) GameError {
	var ge GameError
	if errors.As(err, &ge) {
		return ge
	}

	var notReady *CropNotReadyError
	if errors.As(err, &notReady) {
		return GameError{
			Code:    CodeCropNotReady,
			Message: ErrMsgCropNotReady,
			Details: map[string]any{
				"cropId":        notReady.CropID,
				"timeRemaining": notReady.Remaining.Milliseconds(),
			},
		}
	}

	var investment *InsufficientInvestmentError
	if errors.As(err, &investment) {
		return GameError{
			Code:    CodeInsufficientInvestment,
			Message: investment.Error(),
			Details: map[string]any{
				"seedType":      string(investment.SeedType),
				"minInvestment": investment.Minimum,
				"investment":    investment.Got,
			},
		}
	}

	switch {
	case errors.Is(err, ErrAuthentication):
		return GameError{Code: CodeAuthenticationFailed, Message: ErrMsgAuthentication}
	case errors.Is(err, ErrNotAuthorized):
		return GameError{Code: CodeInvalidRequest, Message: ErrMsgNotAuthorized}
	case errors.Is(err, ErrValidation):
		return GameError{Code: CodeValidationError, Message: err.Error()}
	case errors.Is(err, ErrPositionOccupied):
		return GameError{Code: CodePositionOccupied, Message: ErrMsgPositionOccupied}
	case errors.Is(err, ErrInvalidSeedType):
		return GameError{Code: CodeInvalidSeedType, Message: err.Error()}
	case errors.Is(err, ErrCropNotFound):
		return GameError{Code: CodeCropNotFound, Message: ErrMsgCropNotFound}
	case errors.Is(err, ErrCropAlreadyHarvested):
		return GameError{Code: CodeCropAlreadyHarvested, Message: ErrMsgCropAlreadyHarvested}
	case errors.Is(err, ErrNotOwner):
		return GameError{Code: CodeNotOwner, Message: ErrMsgNotOwner}
	case errors.Is(err, ErrPersistence):
		return GameError{Code: CodeDatabaseError, Message: "The action could not be saved. Please try again."}
	default:
		return GameError{Code: CodeInternalError, Message: "Something went wrong"}
	}
}
