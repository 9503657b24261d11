// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/thinkshare/thinkshare/models"
)

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

// Session is the signed-in state shared by a Client and its caller.
type Session struct {
	mu          sync.RWMutex
	user        *models.User
	accessToken string
}

func NewSession() *Session {
	return &Session{}
}

// LoadSession restores a session written by Save. An empty reader yields an
// empty session.
func LoadSession(r io.Reader) (*Session, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return NewSession(), nil
		}
		return nil, err
	}
	return &Session{user: snap.User, accessToken: snap.AccessToken}, nil
}

// Save writes the current snapshot as JSON.
func (s *Session) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(s.Snapshot())
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: copyUser(s.user), AccessToken: s.accessToken}
}

func (s *Session) Set(user *models.User, accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyUser(user)
	s.accessToken = accessToken
}

func (s *Session) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = copyUser(user)
}

func (s *Session) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.accessToken != ""
}

// Clear forgets the user and token.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.accessToken = ""
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
