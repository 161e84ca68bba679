package pg

import (
	"errors"
	"fmt"
	"strings"

	"optionquotes-service/internal/application"

	"github.com/jackc/pgx/v5/pgconn"
)

// classify tags connectivity failures with application.ErrConnection; other
// errors are returned with the operation prefixed.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConnErr(err) {
		return fmt.Errorf("%w: %s: %w", application.ErrConnection, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnErr(err error) bool {
	if errors.Is(err, application.ErrConnection) {
		return false
	}
	var ce *pgconn.ConnectError
	if errors.As(err, &ce) {
		return true
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		// class 08: connection exception, 57P01..57P03: admin shutdown / cannot connect now
		return strings.HasPrefix(pe.Code, "08") || strings.HasPrefix(pe.Code, "57P0")
	}
	return false
}
