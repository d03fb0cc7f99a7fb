// Package session manages user sessions for the stamping API.
//
// Types:
//   - Session: Tracks uploaded documents, watermark assets, derived outputs,
//     and job status for a user session.
//   - SessionManager: Manages all active sessions.
//
// Expected outputs:
// - Session IDs are unique (UUID)
// - Documents, assets, and outputs are tracked per session
// - Cleanup removes all files for a session
//
// Used by API handlers to manage user state.
package session

import (
	"os"
	"slices"
	"sync"
	"time"

	"go-stamppdf/internal/utils"
)

// Job status values guarding merge/watermark actions.
const (
	StatusIdle    = "idle"
	StatusWorking = "in_progress"
	StatusDone    = "done"
)

type Session struct {
	ID        string
	Documents []string // uploaded source documents, in merge order
	Assets    []string // uploaded watermark images
	Outputs   []string // derived files owned by this session
	CreatedAt time.Time
	Status    string
	Mutex     sync.Mutex
}

type SessionManager struct {
	Sessions map[string]*Session
	Mutex    sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		Sessions: make(map[string]*Session),
	}
}

func (sm *SessionManager) CreateSession() *Session {
	sm.Mutex.Lock()
	defer sm.Mutex.Unlock()

	session := &Session{
		ID:        utils.GenerateUUID(),
		CreatedAt: time.Now(),
		Status:    StatusIdle,
	}
	sm.Sessions[session.ID] = session
	return session
}

func (sm *SessionManager) GetSession(id string) (*Session, bool) {
	sm.Mutex.RLock()
	defer sm.Mutex.RUnlock()
	session, exists := sm.Sessions[id]
	return session, exists
}

func (sm *SessionManager) DeleteSession(id string) {
	sm.Mutex.Lock()
	defer sm.Mutex.Unlock()
	delete(sm.Sessions, id)
}

func (s *Session) AddDocument(path string) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.Documents = append(s.Documents, path)
}

func (s *Session) AddAsset(path string) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.Assets = append(s.Assets, path)
}

func (s *Session) AddOutput(path string) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.Outputs = append(s.Outputs, path)
}

func (s *Session) SetDocuments(paths []string) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.Documents = paths
}

func (s *Session) GetDocuments() []string {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return slices.Clone(s.Documents)
}

func (s *Session) GetAssets() []string {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return slices.Clone(s.Assets)
}

// HasDocument reports whether the session owns the given uploaded document.
func (s *Session) HasDocument(path string) bool {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return slices.Contains(s.Documents, path)
}

// HasAsset reports whether the session owns the given watermark asset.
func (s *Session) HasAsset(path string) bool {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return slices.Contains(s.Assets, path)
}

// OwnsOutput reports whether the session produced the given file.
func (s *Session) OwnsOutput(path string) bool {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return slices.Contains(s.Outputs, path)
}

// ReplaceDocument swaps an uploaded document for its converted counterpart,
// keeping its position in the merge order.
func (s *Session) ReplaceDocument(oldPath, newPath string) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	for i, doc := range s.Documents {
		if doc == oldPath {
			s.Documents[i] = newPath
			return
		}
	}
}

func (s *Session) Cleanup() {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	for _, file := range s.Documents {
		os.Remove(file)
	}
	for _, file := range s.Assets {
		os.Remove(file)
	}
	for _, file := range s.Outputs {
		os.Remove(file)
	}
}
