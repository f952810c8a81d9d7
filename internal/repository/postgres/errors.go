package postgres

import (
	"errors"
	"fmt"

	"conferencegateway/internal/domain"

	"github.com/lib/pq"
)

// SQLSTATE codes that mean the write was rejected by a constraint.
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeStringTooLong       = "22001"
)

// translateError wraps constraint violations with domain.ErrValidation and
// keeps the driver error in the chain. Anything else is returned unchanged.
func translateError(err error) error {
	var perr *pq.Error
	if !errors.As(err, &perr) {
		return err
	}
	switch perr.Code {
	case codeNotNullViolation, codeCheckViolation, codeStringTooLong, codeForeignKeyViolation:
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == codeForeignKeyViolation
}
