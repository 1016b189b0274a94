package store

import (
	"errors"

	"github.com/devfolio/portfolio-backend/internal/apperror"
)

var ErrUnavailable = apperror.New(apperror.KindUnavailable, "Service temporarily unavailable. Please try again later.")

// AppError maps a store error onto the application error kinds. notFound is
// returned for ErrNotFound; any other failure becomes an internal error
// carrying op.
func AppError(err error, notFound *apperror.Error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, ErrNotProvisioned):
		return apperror.Wrap(apperror.KindUnavailable, ErrUnavailable.Msg, err)
	default:
		var ae *apperror.Error
		if errors.As(err, &ae) {
			return err
		}
		return apperror.Internal(op, err)
	}
}
