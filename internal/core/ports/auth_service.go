package ports

import (
	"context"

	"github.com/formasuite/trainerdesk/internal/core/domain"
)

type AuthService interface {
	CheckAuthStatus(ctx context.Context) domain.AuthState
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	State() domain.AuthState
	Subscribe(fn func(domain.AuthState)) (unsubscribe func())
}
