package application

import "context"

// UnitOfWork provides a transaction boundary using context propagation.
// Run commits when commit is true and fn succeeds; otherwise it rolls back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	Run(ctx context.Context, commit bool, fn func(ctx context.Context) error) error
}

// NoopUoW executes the function without starting a transaction.
type NoopUoW struct{}

func (NoopUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

func (NoopUoW) Run(ctx context.Context, _ bool, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
