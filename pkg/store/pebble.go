package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"chatd/pkg/logger"
	"chatd/pkg/models"
	"chatd/pkg/utils"
)

var (
	db     *pebble.DB
	dbPath string
)

// seq provides a small counter to keep message keys unique when multiple
// messages share the same nanosecond timestamp.
var seq uint64

// writeMu serializes message-key allocation with the batch apply, so the
// keys of one append are contiguous in the global order and concurrent
// appends to a thread never interleave.
var writeMu sync.Mutex

// ErrNotFound reports that a thread does not exist for the given owner.
// A thread owned by a different caller yields the same error, so callers
// cannot distinguish "absent" from "not yours".
var ErrNotFound = errors.New("thread not found")

var errNotOpen = errors.New("pebble not opened; call store.Open first")

// Open opens (or creates) a Pebble database at the given path and keeps
// a process-wide handle. The handle is reused across requests and torn
// down once via Close.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func metaKey(threadID string) []byte {
	return []byte("thread:" + threadID + ":meta")
}

func msgPrefix(threadID string) []byte {
	return []byte("thread:" + threadID + ":msg:")
}

func threadPrefix(threadID string) []byte {
	return []byte("thread:" + threadID + ":")
}

func msgKey(threadID string) []byte {
	ts := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&seq, 1)
	return []byte(fmt.Sprintf("thread:%s:msg:%020d-%06d", threadID, ts, s))
}

// prefixEnd returns the smallest key greater than every key with the
// given prefix, for use as an exclusive range bound.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

// CreateThread allocates a new thread owned by ownerID. Any initial
// messages are written in the same atomic batch as the metadata, so to an
// outside observer the thread either exists with its first messages or
// not at all.
func CreateThread(ownerID, title string, initial ...models.Message) (models.Thread, error) {
	if db == nil {
		return models.Thread{}, errNotOpen
	}
	now := time.Now().UTC()
	th := models.Thread{
		ID:        utils.GenThreadID(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	b := db.NewBatch()
	defer func() { _ = b.Close() }()
	if err := setMeta(b, th); err != nil {
		return models.Thread{}, err
	}
	for i := range initial {
		if initial[i].CreatedAt.IsZero() {
			initial[i].CreatedAt = now
		}
		if err := setMessage(b, th.ID, initial[i]); err != nil {
			return models.Thread{}, err
		}
	}
	if err := db.Apply(b, pebble.Sync); err != nil {
		storeErrors.Inc()
		logger.Error("create_thread_failed", "thread", th.ID, "error", err)
		return models.Thread{}, fmt.Errorf("create thread: %w", err)
	}
	threadCreates.Inc()
	logger.Info("thread_created", "thread", th.ID, "messages", len(initial))
	th.Messages = initial
	return th, nil
}

// FindOwned returns the thread with its full message history, but only
// when ownerID matches the stored owner. Any other case is ErrNotFound.
func FindOwned(threadID, ownerID string) (models.Thread, error) {
	if db == nil {
		return models.Thread{}, errNotOpen
	}
	th, err := getOwnedMeta(threadID, ownerID)
	if err != nil {
		return models.Thread{}, err
	}
	msgs, err := listMessages(threadID)
	if err != nil {
		return models.Thread{}, err
	}
	th.Messages = msgs
	return th, nil
}

// AppendMessages atomically appends one or more messages to the end of
// the thread's sequence and refreshes updatedAt in the same batch.
// Concurrent appends never interleave or lose data; the total order of
// two concurrent batches is unspecified, but each batch's internal order
// is preserved.
func AppendMessages(threadID, ownerID string, msgs []models.Message) (models.Thread, error) {
	if db == nil {
		return models.Thread{}, errNotOpen
	}
	if len(msgs) == 0 {
		return models.Thread{}, errors.New("no messages to append")
	}
	th, err := FindOwned(threadID, ownerID)
	if err != nil {
		return models.Thread{}, err
	}

	now := time.Now().UTC()
	writeMu.Lock()
	defer writeMu.Unlock()
	b := db.NewBatch()
	defer func() { _ = b.Close() }()
	for i := range msgs {
		if msgs[i].CreatedAt.IsZero() {
			msgs[i].CreatedAt = now
		}
		if err := setMessage(b, threadID, msgs[i]); err != nil {
			return models.Thread{}, err
		}
	}
	th.UpdatedAt = now
	if err := setMeta(b, th); err != nil {
		return models.Thread{}, err
	}
	if err := db.Apply(b, pebble.Sync); err != nil {
		storeErrors.Inc()
		logger.Error("append_messages_failed", "thread", threadID, "error", err)
		return models.Thread{}, fmt.Errorf("append messages: %w", err)
	}
	messageAppends.Add(float64(len(msgs)))
	logger.Info("messages_appended", "thread", threadID, "count", len(msgs))
	th.Messages = append(th.Messages, msgs...)
	return th, nil
}

// ListOwned returns metadata summaries for every thread owned by ownerID,
// ordered by updatedAt descending.
func ListOwned(ownerID string) ([]models.ThreadSummary, error) {
	if db == nil {
		return nil, errNotOpen
	}
	prefix := []byte("thread:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = iter.Close() }()

	var out []models.ThreadSummary
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		if !bytes.HasSuffix(iter.Key(), []byte(":meta")) {
			continue
		}
		var th models.Thread
		if err := json.Unmarshal(iter.Value(), &th); err != nil {
			continue
		}
		if th.OwnerID != ownerID {
			continue
		}
		out = append(out, th.Summary())
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// DeleteOwned removes the thread and all its messages in one atomic
// range delete. It reports whether a thread was actually deleted; a
// missing or not-owned thread yields (false, nil), so deleting twice is
// not an error.
func DeleteOwned(threadID, ownerID string) (bool, error) {
	if db == nil {
		return false, errNotOpen
	}
	if _, err := getOwnedMeta(threadID, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	start := threadPrefix(threadID)
	b := db.NewBatch()
	defer func() { _ = b.Close() }()
	if err := b.DeleteRange(start, prefixEnd(start), nil); err != nil {
		return false, fmt.Errorf("delete thread: %w", err)
	}
	if err := db.Apply(b, pebble.Sync); err != nil {
		storeErrors.Inc()
		logger.Error("delete_thread_failed", "thread", threadID, "error", err)
		return false, fmt.Errorf("delete thread: %w", err)
	}
	threadDeletes.Inc()
	logger.Info("thread_deleted", "thread", threadID)
	return true, nil
}

// getOwnedMeta loads thread metadata and enforces the ownership check.
func getOwnedMeta(threadID, ownerID string) (models.Thread, error) {
	v, closer, err := db.Get(metaKey(threadID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return models.Thread{}, ErrNotFound
		}
		storeErrors.Inc()
		return models.Thread{}, fmt.Errorf("get thread: %w", err)
	}
	data := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	var th models.Thread
	if err := json.Unmarshal(data, &th); err != nil {
		return models.Thread{}, fmt.Errorf("invalid thread metadata: %w", err)
	}
	if th.OwnerID != ownerID {
		return models.Thread{}, ErrNotFound
	}
	return th, nil
}

// listMessages returns all messages for a thread in insertion order.
func listMessages(threadID string) ([]models.Message, error) {
	prefix := msgPrefix(threadID)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = iter.Close() }()

	var out []models.Message
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var m models.Message
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("invalid message JSON: %w", err)
		}
		out = append(out, m)
	}
	return out, iter.Error()
}

// setMeta marshals thread metadata (without message bodies) into b.
func setMeta(b *pebble.Batch, th models.Thread) error {
	meta := th
	meta.Messages = nil
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	return b.Set(metaKey(th.ID), data, nil)
}

func setMessage(b *pebble.Batch, threadID string, m models.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return b.Set(msgKey(threadID), data, nil)
}
