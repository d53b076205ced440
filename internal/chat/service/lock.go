package service

import (
	"sync"

	"github.com/google/uuid"
)

// conversationLocks serializes orchestration per conversation. TryAcquire
// fails fast instead of queueing; the caller returns a conflict and the
// client resubmits. This closes the read-modify-write race on
// status/stage/lead without a database advisory lock.
type conversationLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{held: make(map[uuid.UUID]struct{})}
}

// TryAcquire reports whether the conversation was free and is now held.
func (l *conversationLocks) TryAcquire(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[id]; ok {
		return false
	}
	l.held[id] = struct{}{}
	return true
}

// Release frees the conversation for the next message.
func (l *conversationLocks) Release(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
