package service

import "sync"

// TutorLocks serializes mutations touching one tutor's (windows, slots,
// sessions) set. Operations for different tutors proceed in parallel. The
// database's partial unique index stays the authoritative double-booking
// guard; this lock keeps schedule replacement and booking accept from
// interleaving on the same tutor, so they must share one instance.
type TutorLocks struct {
	mu    sync.Mutex
	locks map[string]*tutorLockEntry
}

type tutorLockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewTutorLocks builds an empty lock set.
func NewTutorLocks() *TutorLocks {
	return &TutorLocks{locks: make(map[string]*tutorLockEntry)}
}

// Lock acquires the tutor's mutex, returning the matching unlock func.
func (t *TutorLocks) Lock(tutorID string) func() {
	t.mu.Lock()
	entry, ok := t.locks[tutorID]
	if !ok {
		entry = &tutorLockEntry{}
		t.locks[tutorID] = entry
	}
	entry.refs++
	t.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		t.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(t.locks, tutorID)
		}
		t.mu.Unlock()
	}
}
