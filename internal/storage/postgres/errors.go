package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/mcoot/robogamehub/internal/model"
)

// SQLSTATE codes the store translates into domain errors
const (
	codeNotNullViolation    = "23502"
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// mapError translates driver errors into model errors. Anything it does not
// recognise is wrapped with model.ErrStoreUnavailable.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, model.ErrUsernameTaken)
		case codeForeignKeyViolation:
			if strings.Contains(pqErr.Constraint, "game_id") {
				return fmt.Errorf("%s: %w", op, model.ErrGameNotFound)
			}
			return fmt.Errorf("%s: %w", op, model.ErrUserNotFound)
		case codeNotNullViolation:
			if pqErr.Column == "username" {
				return fmt.Errorf("%s: %w", op, model.ErrMissingUsername)
			}
		}
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}
