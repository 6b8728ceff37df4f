package unitofwork

import (
	"context"

	"advisor-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SourceRepository() contract.SourceRepository
	KeyValueRepository() contract.KeyValueRepository
}
