package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/soaringjerry/Disha/internal/models"
	"github.com/soaringjerry/Disha/internal/services"
)

// Snapshot is the JSON document a MemoryStore persists to disk. It is also
// the import format of the migrate command.
type Snapshot struct {
	Sessions []*models.Session  `json:"sessions"`
	Audit    []models.AuditEntry `json:"audit"`
}

// MemoryStore keeps sessions in process. With a snapshot path every write is
// flushed to disk so a restart keeps data.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	nextID   int64
	audit    []models.AuditEntry
	path     string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*models.Session{}, audit: []models.AuditEntry{}}
}

// NewMemoryStoreFromPath loads path when it exists and persists back to it.
// A missing file yields an empty store bound to path.
func NewMemoryStoreFromPath(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	s.path = path
	if path == "" {
		return s, nil
	}
	snap, err := ReadSnapshot(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	s.load(snap)
	return s, nil
}

// ReadSnapshot decodes a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func (s *MemoryStore) load(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range snap.Sessions {
		if sess == nil || sess.SessionID == "" {
			continue
		}
		c := cloneSession(sess)
		if c.ID == 0 {
			s.nextID++
			c.ID = s.nextID
		} else if c.ID > s.nextID {
			s.nextID = c.ID
		}
		s.sessions[c.SessionID] = c
	}
	s.audit = append(s.audit, snap.Audit...)
}

// Snapshot returns a deep copy of the store contents, sessions ordered by id.
func (s *MemoryStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *MemoryStore) snapshotLocked() *Snapshot {
	snap := &Snapshot{Sessions: make([]*models.Session, 0, len(s.sessions)), Audit: append([]models.AuditEntry(nil), s.audit...)}
	for _, sess := range s.sessions {
		snap.Sessions = append(snap.Sessions, cloneSession(sess))
	}
	sort.Slice(snap.Sessions, func(i, j int) bool { return snap.Sessions[i].ID < snap.Sessions[j].ID })
	return snap
}

// persistLocked writes the snapshot atomically. Callers hold the write lock.
func (s *MemoryStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.snapshotLocked(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func cloneSession(in *models.Session) *models.Session {
	c := *in
	if in.Answers != nil {
		c.Answers = make(map[string]string, len(in.Answers))
		for k, v := range in.Answers {
			c.Answers[k] = v
		}
	}
	if in.Scores != nil {
		c.Scores = make(models.Scores, len(in.Scores))
		for k, v := range in.Scores {
			c.Scores[k] = v
		}
	}
	if in.CompletedAt != nil {
		t := *in.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func (s *MemoryStore) CreateSession(_ context.Context, sess *models.Session) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.SessionID]; ok {
		return nil, services.ErrDuplicateSession
	}
	s.nextID++
	c := cloneSession(sess)
	c.ID = s.nextID
	s.sessions[c.SessionID] = c
	if err := s.persistLocked(); err != nil {
		delete(s.sessions, c.SessionID)
		return nil, err
	}
	return cloneSession(c), nil
}

func (s *MemoryStore) UpdateSession(_ context.Context, sess *models.Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.sessions[sess.SessionID]
	if !ok {
		return false, nil
	}
	c := cloneSession(sess)
	c.ID = prev.ID
	s.sessions[c.SessionID] = c
	if err := s.persistLocked(); err != nil {
		s.sessions[c.SessionID] = prev
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[id]; ok {
		return cloneSession(sess), nil
	}
	return nil, nil
}

// ListSessions returns sessions newest first.
func (s *MemoryStore) ListSessions(_ context.Context, status models.Status) ([]*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if status == "" || sess.Status == status {
			out = append(out, cloneSession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.sessions[id]
	if !ok {
		return false, nil
	}
	delete(s.sessions, id)
	if err := s.persistLocked(); err != nil {
		s.sessions[id] = prev
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) CountSessions(_ context.Context, dayStart time.Time) (models.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c models.Counts
	for _, sess := range s.sessions {
		c.Total++
		if sess.Status == models.StatusComplete {
			c.Complete++
		} else {
			c.Incomplete++
		}
		if !sess.StartedAt.Before(dayStart) {
			c.Today++
		}
	}
	return c, nil
}

func (s *MemoryStore) AddAudit(_ context.Context, e models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return s.persistLocked()
}

func (s *MemoryStore) ListAudit(_ context.Context) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditEntry(nil), s.audit...), nil
}
