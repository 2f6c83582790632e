package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// queryInt reads an optional integer query parameter; a missing or empty
// parameter yields def.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgInvalidQueryParam, name)
	}
	return v, nil
}

// decodeQueryInts fills named integer parameters and validates dst. On failure
// the response has been written and ok is false.
func decodeQueryInts(w http.ResponseWriter, r *http.Request, dst any, params map[string]*int) bool {
	for name, target := range params {
		v, err := queryInt(r, name, *target)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:  ErrMsgInvalidRequestSummary,
				Fields: map[string]string{name: "Must be an integer"},
			})
			return false
		}
		*target = v
	}

	if err := GetValidator().ValidateStruct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return false
	}
	return true
}
