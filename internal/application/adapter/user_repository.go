// Package adapter declares the ports the use cases depend on. The integration layer
// provides the implementations.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/money-tracker/backend/internal/domain/entity"
)

// UserRepository stores account holders. Lookups by email expect a normalized address.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error

	// FindByID returns domainerror.ErrUserNotFound when no user has the id.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail returns domainerror.ErrUserNotFound when the address is not registered.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	Update(ctx context.Context, user *entity.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
