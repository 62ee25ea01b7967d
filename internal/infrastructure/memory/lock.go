package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-library-api/internal/domain/repository"
	"github.com/oksasatya/go-library-api/pkg/apperror"
)

// Locker is a process-local UserLocker. It never waits: a held lock fails with Busy.
type Locker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocker() *Locker {
	return &Locker{held: map[string]struct{}{}}
}

func (l *Locker) Lock(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[userID]; ok {
		return nil, apperror.New(apperror.KindBusy, "another profile update is in progress")
	}
	l.held[userID] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, userID)
			l.mu.Unlock()
		})
	}, nil
}

var _ repository.UserLocker = (*Locker)(nil)
