package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/juangiadev/fulbo/repositories"
)

// TxManager runs a function inside a database transaction. The
// executor handed to fn is the open transaction, so repository calls
// made through it all commit or roll back together.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTxManager struct {
	db *sql.DB
}

func NewSQLTxManager(db *sql.DB) TxManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
