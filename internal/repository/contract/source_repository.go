package contract

import (
	"context"

	"advisor-chat-be/internal/entity"
	"advisor-chat-be/internal/repository/specification"
)

type SourceRepository interface {
	// ReplaceAll deletes every stored source and writes the given ones in order.
	ReplaceAll(ctx context.Context, sources []*entity.Source) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Source, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
