package persistence

import (
	"errors"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// isUniqueViolation matches both translated GORM errors and raw driver errors
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND domain error for resource
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}

// conflictOr maps unique violations to a CONFLICT domain error
func conflictOr(err error, message string) error {
	if isUniqueViolation(err) {
		return shared.NewDomainError(shared.CodeConflict, message)
	}
	return err
}

func concurrentModification(resource string) error {
	return shared.NewDomainError(shared.CodeConcurrentModification,
		"The "+resource+" has been modified by another transaction")
}
