package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

type accountRepository struct {
	kv repository.KeyValueStore
}

// NewAccountRepository constructs the login record repository.
func NewAccountRepository(kv repository.KeyValueStore) repository.AccountRepository {
	return &accountRepository{kv: kv}
}

func (r *accountRepository) Find(ctx context.Context, identity string) (*entity.Account, error) {
	var account entity.Account
	if err := getJSON(ctx, r.kv, accountKey(identity), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, identity string, account *entity.Account) error {
	if _, err := r.Find(ctx, identity); err == nil {
		return entity.ErrAccountExists
	} else if !errors.Is(err, entity.ErrRecordNotFound) && !errors.Is(err, entity.ErrCorruptRecord) {
		return err
	}
	return setJSON(ctx, r.kv, accountKey(identity), account)
}

func (r *accountRepository) List(ctx context.Context) ([]string, error) {
	keys, err := r.kv.Keys(ctx, accountKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return lo.Map(keys, func(key string, _ int) string {
		return strings.TrimPrefix(key, accountKeyPrefix)
	}), nil
}

func (r *accountRepository) CurrentUser(ctx context.Context) (string, error) {
	identity, found, err := r.kv.Get(ctx, currentUserKey)
	if err != nil {
		return "", fmt.Errorf("get current user: %w", err)
	}
	if !found {
		return "", nil
	}
	return identity, nil
}

func (r *accountRepository) SetCurrentUser(ctx context.Context, identity string) error {
	if err := r.kv.Set(ctx, currentUserKey, identity); err != nil {
		return fmt.Errorf("set current user: %w", err)
	}
	return nil
}

func (r *accountRepository) ClearCurrentUser(ctx context.Context) error {
	if err := r.kv.Delete(ctx, currentUserKey); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

type documentRepository struct {
	kv repository.KeyValueStore
}

// NewDocumentRepository constructs the processed-document repository.
func NewDocumentRepository(kv repository.KeyValueStore) repository.DocumentRepository {
	return &documentRepository{kv: kv}
}

func (r *documentRepository) Current(ctx context.Context) (*entity.Document, error) {
	var doc entity.Document
	if err := getJSON(ctx, r.kv, documentKey, &doc); err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) || errors.Is(err, entity.ErrCorruptRecord) {
			return nil, entity.ErrNoDocument
		}
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Save(ctx context.Context, doc *entity.Document) error {
	return setJSON(ctx, r.kv, documentKey, doc)
}
