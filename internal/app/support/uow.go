package support

import (
	"context"

	"staybook/internal/app/uow"
)

// BeginUnit reuses a unit of work from context or starts a new one. The
// returned cleanup rolls back a locally started unit; callers that mutate
// state commit explicitly and may then skip the rollback via the committed
// flag idiom.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, false, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	return unit, execCtx, true, nil
}

// BeginReadOnlyUnit is BeginUnit for queries; the cleanup func always rolls
// back because reads never commit.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, execCtx, managed, err := BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	if !managed {
		return unit, execCtx, nil, nil
	}
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}
