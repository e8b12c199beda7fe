package repository

import (
	"context"

	"github.com/eslsoft/neurostudy/internal/entity"
)

// AccountRepository stores login records and the currently logged-in identity.
type AccountRepository interface {
	Find(ctx context.Context, identity string) (*entity.Account, error)
	Create(ctx context.Context, identity string, account *entity.Account) error
	List(ctx context.Context) ([]string, error)

	CurrentUser(ctx context.Context) (string, error)
	SetCurrentUser(ctx context.Context, identity string) error
	ClearCurrentUser(ctx context.Context) error
}

// DocumentRepository keeps the last processed document for the quiz step.
type DocumentRepository interface {
	Current(ctx context.Context) (*entity.Document, error)
	Save(ctx context.Context, doc *entity.Document) error
}
