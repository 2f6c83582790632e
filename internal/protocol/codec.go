package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/HarvestRealm_Go/internal/domain"
)

// Envelope is the wire frame: {"type": ..., "data": {...}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their wire names
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Decode parses one inbound frame. Failures wrap domain.ErrValidation.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if len(raw) > MaxFrameBytes {
		return env, fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgFrameTooLarge)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgMalformedEnvelope)
	}
	env.Type = strings.TrimSpace(env.Type)
	if env.Type == "" {
		return env, fmt.Errorf("%w: %s", domain.ErrValidation, ErrMsgMalformedEnvelope)
	}
	return env, nil
}

// Unmarshal decodes the envelope data into v without tag validation.
// A missing data field leaves v untouched.
func Unmarshal(env Envelope, v any) error {
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrValidation, ErrMsgMalformedPayload, describeJSONError(err))
	}
	return nil
}

// DecodeInto decodes and validates the payload of env as T
func DecodeInto[T any](env Envelope) (T, error) {
	var v T
	if err := Unmarshal(env, &v); err != nil {
		return v, err
	}
	if err := getValidator().Struct(&v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return v, nil
		}
		return v, fmt.Errorf("%w: %s", domain.ErrValidation, describeValidationError(err))
	}
	return v, nil
}

// Encode builds an outbound frame
func Encode(msgType string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, Data: payload})
}

// EncodeError builds a game_error frame from any error in the taxonomy
func EncodeError(err error) ([]byte, error) {
	return Encode(TypeGameError, domain.ToGameError(err))
}

func describeJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field %q must be a %s", typeErr.Field, typeErr.Type.String())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "invalid JSON"
	}
	return err.Error()
}

func describeValidationError(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return ErrMsgMalformedPayload
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s long", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, ", ")
}
