package client

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/GoArmGo/UserApp/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	uniqueViolation    = "23505"
	dataExceptionClass = "22"
)

// TranslateError переводит ошибки драйвера в доменные:
// нет строки - ErrNotFound, нарушение уникальности - ErrConflict,
// проблемы соединения - ErrStoreUnavailable, некорректное значение (класс 22) -
// ErrValidation. Остальное возвращается как есть.
// Понимает ошибки и lib/pq, и pgx.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return translateCode(string(pqErr.Code), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return translateCode(pgErr.Code, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return err
}

func translateCode(code string, err error) error {
	switch {
	case code == uniqueViolation:
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case strings.HasPrefix(code, dataExceptionClass):
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	case isUnavailableCode(code):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}

// isUnavailableCode: класс 08 (connection exception), 53 (insufficient resources)
// и 57P01-57P03 (сервер останавливается или ещё не готов).
func isUnavailableCode(code string) bool {
	if len(code) != 5 {
		return false
	}
	switch code[:2] {
	case "08", "53":
		return true
	}
	switch code {
	case "57P01", "57P02", "57P03":
		return true
	}
	return false
}
