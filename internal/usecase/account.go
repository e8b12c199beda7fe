package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// AccountUsecase is the local login collaborator. It is not an authentication
// system: passwords are compared as stored.
type AccountUsecase interface {
	SignUp(ctx context.Context, identity, password string) error
	Login(ctx context.Context, identity, password string) error
	// Logout forgets the current user and their in-progress quiz.
	Logout(ctx context.Context) error
	// Current returns the logged-in identity, or "" when nobody is.
	Current(ctx context.Context) (string, error)
}

// NewAccountUsecase wires account and checkpoint repositories.
func NewAccountUsecase(accounts repository.AccountRepository, checkpoints repository.QuizSessionRepository) AccountUsecase {
	return &accountUsecase{
		accounts:    accounts,
		checkpoints: checkpoints,
		clock:       time.Now,
	}
}

type accountUsecase struct {
	accounts    repository.AccountRepository
	checkpoints repository.QuizSessionRepository
	clock       func() time.Time
}

func (u *accountUsecase) SignUp(ctx context.Context, identity, password string) error {
	identity = entity.NormalizeIdentity(identity)
	if identity == "" {
		return entity.ErrInvalidIdentity
	}
	if _, err := u.accounts.Find(ctx, identity); err == nil {
		return entity.ErrAccountExists
	} else if !errors.Is(err, entity.ErrRecordNotFound) && !errors.Is(err, entity.ErrCorruptRecord) {
		return fmt.Errorf("find account: %w", err)
	}
	if len(password) < entity.MinPasswordLength {
		return entity.ErrPasswordTooShort
	}

	account := &entity.Account{Password: password, CreatedAt: u.clock().UTC()}
	if err := u.accounts.Create(ctx, identity, account); err != nil {
		return err
	}
	return u.accounts.SetCurrentUser(ctx, identity)
}

func (u *accountUsecase) Login(ctx context.Context, identity, password string) error {
	identity = entity.NormalizeIdentity(identity)
	if identity == "" {
		return entity.ErrInvalidCredentials
	}
	account, err := u.accounts.Find(ctx, identity)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) || errors.Is(err, entity.ErrCorruptRecord) {
			return entity.ErrInvalidCredentials
		}
		return fmt.Errorf("find account: %w", err)
	}
	if account.Password != password {
		return entity.ErrInvalidCredentials
	}
	return u.accounts.SetCurrentUser(ctx, identity)
}

func (u *accountUsecase) Logout(ctx context.Context) error {
	if err := u.accounts.ClearCurrentUser(ctx); err != nil {
		return err
	}
	return u.checkpoints.Clear(ctx)
}

func (u *accountUsecase) Current(ctx context.Context) (string, error) {
	return u.accounts.CurrentUser(ctx)
}
