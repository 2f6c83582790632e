package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ListWorldsQuery(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name    string
		query   ListWorldsQuery
		wantErr bool
	}{
		{"defaults", ListWorldsQuery{Limit: DefaultWorldsLimit}, false},
		{"max limit", ListWorldsQuery{Limit: MaxWorldsLimit, Offset: 500}, false},
		{"zero limit", ListWorldsQuery{Limit: 0}, true},
		{"limit too large", ListWorldsQuery{Limit: MaxWorldsLimit + 1}, true},
		{"negative offset", ListWorldsQuery{Limit: 10, Offset: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.query)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	t.Run("uses query names", func(t *testing.T) {
		err := GetValidator().ValidateStruct(ListWorldsQuery{Limit: 1000, Offset: -3})
		require.Error(t, err)

		fields := FormatValidationError(err)
		assert.Equal(t, "Must be at most 100", fields["limit"])
		assert.Equal(t, "Must be at least 0", fields["offset"])
		assert.NotContains(t, fields, "Limit")
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FormatValidationError(nil))
	})

	t.Run("not a validation error", func(t *testing.T) {
		fields := FormatValidationError(errors.New("boom"))
		assert.Equal(t, "Invalid request format", fields["error"])
	})
}
