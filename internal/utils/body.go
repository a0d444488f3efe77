package utils

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps JSON request bodies. Storefront payloads are a few hundred bytes.
const MaxBodyBytes = 64 << 10

var (
	ErrEmptyBody    = stdErrors.New("request body cannot be empty")
	ErrBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)
	ErrTrailingData = stdErrors.New("request body must contain a single JSON object")
)

// DecodeJSONBody reads exactly one JSON value from the request body into dest.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) error {

	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := decoder.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError

		switch {
		case stdErrors.Is(err, io.EOF):
			return ErrEmptyBody
		case stdErrors.As(err, &maxErr):
			return ErrBodyTooLarge
		default:
			return fmt.Errorf("invalid JSON format: %w", err)
		}
	}

	if decoder.More() {
		return ErrTrailingData
	}

	return nil
}

// ValidateStruct runs the struct tags of data. Tag failures come back as
// validator.ValidationErrors so callers can report them field by field.
func ValidateStruct(validate *validator.Validate, data any) error {

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if stdErrors.As(err, &validationErrs) {
		return validationErrs
	}

	return fmt.Errorf("unexpected validation error: %w", err)
}
