// Пакет repository — слой доступа к данным PostgreSQL.
// Все запросы — чистый SQL через pgx, без ORM.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager выполняет операции над файловым репозиторием в одной
// транзакции. Транзакционный handle принадлежит исключительно запросу,
// который её открыл, и между запросами не разделяется.
type TxManager interface {
	// WithFiles выполняет fn с репозиторием, привязанным к транзакции.
	// Ошибка fn — откат, успех — коммит.
	WithFiles(ctx context.Context, fn func(FileRepository) error) error
}

// TxRunner — реализация TxManager поверх pgxpool.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner создаёт TxRunner для управления транзакциями.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// WithFiles выполняет fn с файловым репозиторием внутри транзакции.
// При ошибке fn (включая отмену контекста) транзакция откатывается.
func (r *TxRunner) WithFiles(ctx context.Context, fn func(FileRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // откат после коммита — no-op

	if err := fn(NewFileRepository(tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// IsUniqueViolation проверяет, является ли ошибка нарушением
// уникальности PostgreSQL (код 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
