// Package postgres implementa los puertos de persistencia sobre PostgreSQL (pgx).
// Asignaciones y gastos viven en tablas hijas con clave compuesta, de modo que
// cada operación sobre un empleado o gasto es una única sentencia atómica.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier abstrae pool y tx para que los repositorios funcionen con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// DB pool más el límite de tiempo por llamada al almacenamiento.
type DB struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewDB construye el acceso compartido por los repositorios. timeout <= 0 = sin límite propio.
func NewDB(pool *pgxpool.Pool, timeout time.Duration) *DB {
	return &DB{pool: pool, timeout: timeout}
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, db.timeout)
}

// writeTx ejecuta fn en una transacción READ COMMITTED; revierte si fn falla.
func (db *DB) writeTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// readTx ejecuta fn en una transacción de solo lectura REPEATABLE READ, para que
// un proyecto y sus tablas hijas se lean desde la misma instantánea.
func (db *DB) readTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
