package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/agrimarket-api/internal/domain"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repos funcionan con pool o dentro de una tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Códigos SQLSTATE que se traducen a errores de dominio.
const (
	codeNumericOutOfRange    = "22003"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// isForeignKeyViolation verifica si un error es una violación de llave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isCheckViolation verifica si un error es una violación de CHECK (23514), p. ej. quantity >= 0.
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}

// isQuantityOutOfRange indica una cantidad fuera del CHECK de la tabla o del rango de INTEGER (22003).
func isQuantityOutOfRange(err error) bool {
	return isCheckViolation(err) || pgCode(err) == codeNumericOutOfRange
}

// isRetryable indica errores de concurrencia tras los que el cliente puede reintentar.
func isRetryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

// wrapErr traduce los errores de concurrencia a domain.ErrConflict y envuelve el resto con contexto.
func wrapErr(op string, err error) error {
	if isRetryable(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
