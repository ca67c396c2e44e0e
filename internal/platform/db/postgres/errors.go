package postgres

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL の SQLSTATE コードです。
const (
	CodeUniqueViolation           = "23505"
	CodeInvalidTextRepresentation = "22P02"
)

// IsUnavailable は err がストアへの接続不可・一時的な障害を表す場合に true を返します。
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception, class 57: operator intervention
		return len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57")
	}

	return pgconn.SafeToRetry(err)
}

// HasCode は err が指定した SQLSTATE の PgError を含むかを判定します。
func HasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
