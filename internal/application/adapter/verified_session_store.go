package adapter

import (
	"context"

	"github.com/google/uuid"
)

// VerifiedSessionStore remembers which signed-in users have a verified email so protected
// requests do not hit the users table each time. Entries are written on verification or
// login and removed on logout.
type VerifiedSessionStore interface {
	MarkVerified(ctx context.Context, userID uuid.UUID) error
	IsVerified(ctx context.Context, userID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}
