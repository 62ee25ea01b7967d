package repository

import "context"

// UserLocker serialises profile-mutating operations per user. Lock returns
// apperror.ErrBusy when the lock is held elsewhere; the returned func releases it.
type UserLocker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}
