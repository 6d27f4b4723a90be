package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ProductDraft is a partially filled admin product form.
type ProductDraft struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price,omitempty"` // minor units
}

// SessionState holds per-chat UI state: the catalog scroll position and the
// admin form-filling progress. Peripheral state, kept outside the payment core.
type SessionState struct {
	CatalogIndex int           `json:"catalogIndex"`
	AdminStep    string        `json:"adminStep,omitempty"`
	Draft        *ProductDraft `json:"draft,omitempty"`
}

// SessionStore keeps chat session state in Redis.
type SessionStore struct {
	ttl time.Duration
}

var (
	setSessionValue = Set
	getSessionValue = Get
	delSessionValue = Del
)

// NewSessionStore creates a new session store. ttl bounds how long idle chat
// state is retained.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl}
}

func sessionKey(chatID int64) string {
	return "session:" + strconv.FormatInt(chatID, 10)
}

// Get returns the chat's session state, or a zero state when none is stored.
func (s *SessionStore) Get(ctx context.Context, chatID int64) (*SessionState, error) {
	raw, err := getSessionValue(ctx, sessionKey(chatID))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &SessionState{}, nil
		}
		return nil, err
	}

	var state SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save stores the chat's session state.
func (s *SessionStore) Save(ctx context.Context, chatID int64, state *SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return setSessionValue(ctx, sessionKey(chatID), string(raw), s.ttl)
}

// Delete removes the chat's session state.
func (s *SessionStore) Delete(ctx context.Context, chatID int64) error {
	return delSessionValue(ctx, sessionKey(chatID))
}
