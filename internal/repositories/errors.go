package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRevisionConflict = errors.New("cart was modified concurrently")
	ErrCartExists       = errors.New("cart already exists for owner")
	ErrAlreadyPaid      = errors.New("order is already paid")
	ErrAlreadyDelivered = errors.New("order is already delivered or not paid")
	ErrDuplicateEmail   = errors.New("email is already registered")
	ErrProductInUse     = errors.New("product is referenced by existing orders")
)

const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}
