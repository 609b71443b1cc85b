package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPhotoNotFound  = errors.New("photo not found")
	ErrDuplicatePhoto = errors.New("photo id already exists")
	ErrBlobNotFound   = errors.New("blob not found")
)

// ValidationError marks bad input: missing file, disallowed format,
// oversized payload, undecodable image data. The error middleware maps
// it to 400; everything else non-sentinel becomes 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
