// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/chatbox/internal/kv"
	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
)

// =============================================================================
// KEYS AND LIMITS
// =============================================================================

const (
	// IndexKey holds the ordered list of thread ids.
	IndexKey = "chat-list"

	// ThreadKeyPrefix prefixes each thread's message key.
	ThreadKeyPrefix = "chat-"

	// DefaultMaxMessages is the per-thread history cap.
	DefaultMaxMessages = 100
)

// ThreadKey returns the kv key holding a thread's messages.
func ThreadKey(id model.ThreadID) string {
	return ThreadKeyPrefix + string(id)
}

// ValidateThreadID rejects ids that cannot own a message key: blank ids,
// ids whose key is not a valid kv key, and ids whose key would collide with
// the index.
func ValidateThreadID(id model.ThreadID) error {
	if strings.TrimSpace(string(id)) == "" {
		return fmt.Errorf("%w: blank", ErrInvalidThreadID)
	}
	key := ThreadKey(id)
	if err := kv.ValidateKey(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidThreadID, err)
	}
	if key == IndexKey {
		return fmt.Errorf("%w: %q is a reserved key", ErrInvalidThreadID, key)
	}
	return nil
}

// =============================================================================
// THREAD STORE
// =============================================================================

// ThreadStore persists threads and the thread index.
//
// Read-modify-write operations are serialized within the process. Separate
// processes sharing the same data are not coordinated; the last write wins.
type ThreadStore struct {
	kv          kv.Store
	maxMessages int

	mu sync.Mutex
}

// NewThreadStore creates a store over kv keeping at most maxMessages per
// thread. A non-positive maxMessages uses DefaultMaxMessages.
func NewThreadStore(store kv.Store, maxMessages int) *ThreadStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &ThreadStore{kv: store, maxMessages: maxMessages}
}

// MaxMessages returns the per-thread cap.
func (s *ThreadStore) MaxMessages() int {
	return s.maxMessages
}

// KV returns the underlying key-value store.
func (s *ThreadStore) KV() kv.Store {
	return s.kv
}

// =============================================================================
// MESSAGES
// =============================================================================

// storedMessage mirrors model.Message with pointers so missing fields can be
// told apart from empty ones.
type storedMessage struct {
	Sender  *string `json:"sender"`
	Content *string `json:"content"`
}

// Load returns the thread's messages, at most MaxMessages, oldest first.
// Absent or malformed data yields an empty slice.
func (s *ThreadStore) Load(id model.ThreadID) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *ThreadStore) load(id model.ThreadID) ([]model.Message, error) {
	if err := ValidateThreadID(id); err != nil {
		logger.WithThread("storage", string(id)).Warn("ignoring invalid thread id", "error", err)
		return []model.Message{}, nil
	}
	key := ThreadKey(id)
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread %s: %w", id, err)
	}
	if !ok {
		return []model.Message{}, nil
	}

	msgs, err := decodeMessages(raw)
	if err != nil {
		logger.WithThread("storage", string(id)).Warn("discarding malformed thread data", "key", key, "error", err)
		return []model.Message{}, nil
	}
	return s.truncate(msgs), nil
}

// decodeMessages parses a persisted thread. Entries with an unknown sender
// are dropped; any structurally invalid entry rejects the whole value.
func decodeMessages(raw string) ([]model.Message, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, len(entries))
	for i, entry := range entries {
		var sm storedMessage
		if err := json.Unmarshal(entry, &sm); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if sm.Sender == nil || sm.Content == nil {
			return nil, fmt.Errorf("entry %d: missing sender or content", i)
		}
		role := model.Role(*sm.Sender)
		if !role.Valid() {
			continue
		}
		msgs = append(msgs, model.Message{Sender: role, Content: *sm.Content})
	}
	return msgs, nil
}

// truncate keeps the most recent maxMessages entries.
func (s *ThreadStore) truncate(msgs []model.Message) []model.Message {
	if len(msgs) <= s.maxMessages {
		return msgs
	}
	kept := make([]model.Message, s.maxMessages)
	copy(kept, msgs[len(msgs)-s.maxMessages:])
	return kept
}

// Append adds msg to the end of the thread, drops the oldest entries beyond
// the cap, persists, and returns the persisted sequence.
func (s *ThreadStore) Append(id model.ThreadID, msg model.Message) ([]model.Message, error) {
	if !msg.Sender.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, msg.Sender)
	}
	if err := ValidateThreadID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.load(id)
	if err != nil {
		return nil, err
	}
	msgs = s.truncate(append(msgs, msg))

	if err := s.saveMessages(id, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *ThreadStore) saveMessages(id model.ThreadID, msgs []model.Message) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to encode thread %s: %w", id, err)
	}
	if err := s.kv.Set(ThreadKey(id), string(data)); err != nil {
		return fmt.Errorf("failed to save thread %s: %w", id, err)
	}
	return nil
}

// =============================================================================
// THREAD INDEX
// =============================================================================

// ListThreads returns thread ids in creation order. A malformed index yields
// an empty list.
func (s *ThreadStore) ListThreads() ([]model.ThreadID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listThreads()
}

func (s *ThreadStore) listThreads() ([]model.ThreadID, error) {
	raw, ok, err := s.kv.Get(IndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread index: %w", err)
	}
	if !ok {
		return []model.ThreadID{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logger.Component("storage").Warn("discarding malformed thread index", "key", IndexKey, "error", err)
		return []model.ThreadID{}, nil
	}

	threads := make([]model.ThreadID, 0, len(ids))
	for _, raw := range ids {
		id := model.ThreadID(raw)
		if err := ValidateThreadID(id); err != nil {
			logger.Component("storage").Warn("dropping invalid id from thread index", "id", raw, "error", err)
			continue
		}
		threads = append(threads, id)
	}
	return threads, nil
}

func (s *ThreadStore) saveIndex(ids []model.ThreadID) error {
	if ids == nil {
		ids = []model.ThreadID{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode thread index: %w", err)
	}
	if err := s.kv.Set(IndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to save thread index: %w", err)
	}
	return nil
}

// CreateThread registers a new empty thread and returns its id.
func (s *ThreadStore) CreateThread() (model.ThreadID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.listThreads()
	if err != nil {
		return "", err
	}

	id := model.NewThreadID()
	// messages first so every indexed id has a sequence
	if err := s.saveMessages(id, []model.Message{}); err != nil {
		return "", err
	}
	if err := s.saveIndex(append(ids, id)); err != nil {
		return "", err
	}

	logger.WithThread("storage", string(id)).Debug("thread created", "threads", len(ids)+1)
	return id, nil
}

// DeleteThread removes id from the index. Its messages stay behind as an
// orphan until Prune. Deleting an unknown id does nothing.
func (s *ThreadStore) DeleteThread(id model.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.listThreads()
	if err != nil {
		return err
	}

	remaining := make([]model.ThreadID, 0, len(ids))
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		remaining = append(remaining, existing)
	}
	if !found {
		return nil
	}

	if err := s.saveIndex(remaining); err != nil {
		return err
	}
	logger.WithThread("storage", string(id)).Debug("thread deleted", "remaining", len(remaining))
	return nil
}

// MostRecent returns the most recently created thread.
func (s *ThreadStore) MostRecent() (model.ThreadID, bool, error) {
	ids, err := s.ListThreads()
	if err != nil {
		return "", false, err
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[len(ids)-1], true, nil
}

// Contains reports whether id is in the thread index.
func (s *ThreadStore) Contains(id model.ThreadID) (bool, error) {
	ids, err := s.ListThreads()
	if err != nil {
		return false, err
	}
	return indexOf(ids, id) >= 0, nil
}

// Position returns the 0-based creation position of id, or -1.
func (s *ThreadStore) Position(id model.ThreadID) (int, error) {
	ids, err := s.ListThreads()
	if err != nil {
		return -1, err
	}
	return indexOf(ids, id), nil
}

func indexOf(ids []model.ThreadID, id model.ThreadID) int {
	for i, existing := range ids {
		if existing == id {
			return i
		}
	}
	return -1
}

// Label returns the display label for the thread at a 0-based position.
func Label(position int) string {
	return fmt.Sprintf("Chat %d", position+1)
}

// =============================================================================
// ORPHAN CLEANUP
// =============================================================================

// Orphans returns ids whose messages are stored but which are no longer in
// the index.
func (s *ThreadStore) Orphans() ([]model.ThreadID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orphans()
}

func (s *ThreadStore) orphans() ([]model.ThreadID, error) {
	ids, err := s.listThreads()
	if err != nil {
		return nil, err
	}
	indexed := make(map[model.ThreadID]bool, len(ids))
	for _, id := range ids {
		indexed[id] = true
	}

	keys, err := s.kv.Keys(ThreadKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread keys: %w", err)
	}

	var orphans []model.ThreadID
	for _, key := range keys {
		if key == IndexKey {
			continue
		}
		id := model.ThreadID(strings.TrimPrefix(key, ThreadKeyPrefix))
		if !indexed[id] {
			orphans = append(orphans, id)
		}
	}
	return orphans, nil
}

// Prune deletes the messages of every orphaned thread and returns how many
// were removed.
func (s *ThreadStore) Prune() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orphans, err := s.orphans()
	if err != nil {
		return 0, err
	}
	for i, id := range orphans {
		if err := s.kv.Delete(ThreadKey(id)); err != nil {
			return i, fmt.Errorf("failed to prune thread %s: %w", id, err)
		}
	}
	if len(orphans) > 0 {
		logger.Component("storage").Info("pruned orphaned threads", "count", len(orphans))
	}
	return len(orphans), nil
}
