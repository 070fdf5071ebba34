package chat

import (
	"errors"
	"strings"

	"chatd/pkg/models"
	"chatd/pkg/store"
)

// Read-side thread operations. These re-check ownership on every call;
// the core holds no authority-confirming cache.

// ListThreads returns metadata summaries for the caller's threads, newest
// activity first.
func ListThreads(callerID string) ([]models.ThreadSummary, error) {
	if strings.TrimSpace(callerID) == "" {
		return nil, ErrUnauthenticated
	}
	return store.ListOwned(callerID)
}

// GetThread returns one thread with its full message history.
func GetThread(callerID, threadID string) (models.Thread, error) {
	if strings.TrimSpace(callerID) == "" {
		return models.Thread{}, ErrUnauthenticated
	}
	th, err := store.FindOwned(threadID, callerID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Thread{}, ErrThreadNotFound
	}
	return th, err
}

// DeleteThread removes the caller's thread and all its messages. It
// reports whether a thread was actually deleted; a second delete reports
// false without error.
func DeleteThread(callerID, threadID string) (bool, error) {
	if strings.TrimSpace(callerID) == "" {
		return false, ErrUnauthenticated
	}
	return store.DeleteOwned(threadID, callerID)
}
