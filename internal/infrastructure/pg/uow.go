package pg

import (
	"context"
	"errors"
	"fmt"

	"optionquotes-service/internal/application"
	"optionquotes-service/internal/infrastructure/logx"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type txKey struct{}

func txFromCtx(ctx context.Context) pgx.Tx {
	if v := ctx.Value(txKey{}); v != nil {
		if tx, ok := v.(pgx.Tx); ok {
			return tx
		}
	}
	return nil
}

var _ application.UnitOfWork = (*UnitOfWork)(nil)

type UnitOfWork struct {
	DB *DB
}

func NewUnitOfWork(db *DB) *UnitOfWork { return &UnitOfWork{DB: db} }

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.Run(ctx, true, fn)
}

// Run executes fn inside one transaction on a dedicated connection. The transaction
// is committed only when commit is true and fn succeeds; the connection is always
// released. A ctx that already carries a transaction joins it.
func (u *UnitOfWork) Run(ctx context.Context, commit bool, fn func(ctx context.Context) error) error {
	if txFromCtx(ctx) != nil {
		return fn(ctx)
	}
	conn, err := u.DB.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return classify("begin", err)
	}
	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		finished = true
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logx.L().Warn("sql.rollback_failed", zap.Error(rbErr))
		}
		return err
	}
	finished = true
	if !commit {
		if err := tx.Rollback(ctx); err != nil {
			return fmt.Errorf("%w: rollback: %w", application.ErrTransaction, err)
		}
		return nil
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", application.ErrTransaction, err)
	}
	return nil
}
