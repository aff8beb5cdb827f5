package server

import (
	"errors"
	"sync"
	"time"

	"github.com/KaramelBytes/histx/internal/dataset"
	"github.com/KaramelBytes/histx/internal/ingest"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const sessionCookie = "histx_session"

var (
	// ErrNoSession indicates a request without a live session cookie.
	ErrNoSession = errors.New("no active session; load a dataset first")
	// ErrNoDataset indicates the session has not loaded any data yet.
	ErrNoDataset = errors.New("no data loaded")
)

// Session is one browser's state: its own ingestion cache and the dataset
// currently selected. Requests for the same session may run concurrently.
type Session struct {
	ID     string
	Loader *ingest.Loader

	mu      sync.RWMutex
	ds      *dataset.Dataset
	message string
	lastErr string
}

// Current returns the loaded dataset (possibly empty) and its status message.
func (s *Session) Current() (*dataset.Dataset, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds, s.message
}

// Dataset returns the loaded dataset or ErrNoDataset.
func (s *Session) Dataset() (*dataset.Dataset, error) {
	ds, _ := s.Current()
	if ds.IsEmpty() {
		return nil, ErrNoDataset
	}
	return ds, nil
}

func (s *Session) set(ds *dataset.Dataset, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds, s.message, s.lastErr = ds, message, ""
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = msg
}

// takeError returns and clears the last load error shown to the user.
func (s *Session) takeError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.lastErr
	s.lastErr = ""
	return msg
}

// SessionStore keeps sessions in memory and expires them after ttl of
// inactivity.
type SessionStore struct {
	cache     *cache.Cache
	ttl       time.Duration
	newLoader func() *ingest.Loader
}

func NewSessionStore(ttl time.Duration, newLoader func() *ingest.Loader) *SessionStore {
	return &SessionStore{
		cache:     cache.New(ttl, ttl),
		ttl:       ttl,
		newLoader: newLoader,
	}
}

// Get returns a live session and extends its lifetime.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	x, ok := st.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess := x.(*Session)
	st.cache.Set(id, sess, cache.DefaultExpiration)
	return sess, true
}

// Create starts a session with an empty dataset.
func (st *SessionStore) Create() *Session {
	sess := &Session{
		ID:     uuid.NewString(),
		Loader: st.newLoader(),
		ds:     dataset.Empty(""),
	}
	st.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int { return st.cache.ItemCount() }
