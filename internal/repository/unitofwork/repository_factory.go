package unitofwork

import "context"

type RepositoryFactory interface {
	// NewUnitOfWork returns repositories bound to ctx, outside any transaction.
	NewUnitOfWork(ctx context.Context) UnitOfWork
	// InTransaction runs fn inside one transaction, rolling back when fn fails.
	InTransaction(ctx context.Context, fn func(uow UnitOfWork) error) error
}
