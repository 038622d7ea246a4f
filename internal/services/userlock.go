package services

import "sync"

// userLocks serializes mutations per user_id so a checkout never interleaves
// with an add or update on the same cart. Cross-user operations never contend.
type userLocks struct {
	mu sync.Mutex
	m  map[int]*sync.Mutex
}

func (l *userLocks) lock(userID int) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[int]*sync.Mutex)
	}
	um, ok := l.m[userID]
	if !ok {
		um = &sync.Mutex{}
		l.m[userID] = um
	}
	l.mu.Unlock()

	um.Lock()
	return um.Unlock
}
