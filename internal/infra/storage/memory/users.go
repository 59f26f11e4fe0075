package memory

import (
	"context"
	"sync"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

// UserRepository stores users in memory. Not suitable for production.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[domainuser.ID]*domainuser.User
	byEmail map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[domainuser.ID]*domainuser.User),
		byEmail: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if user, ok := r.byID[id]; ok {
		return cloneUser(user), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[domainuser.NormalizeEmail(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	if user, ok := r.byID[id]; ok {
		return cloneUser(user), nil
	}
	return nil, domainuser.ErrNotFound
}

func (r *UserRepository) Save(ctx context.Context, user *domainuser.User) error {
	if user == nil {
		return domainuser.ErrIDRequired
	}
	emailKey := domainuser.NormalizeEmail(user.Email)
	if emailKey == "" {
		return domainuser.ErrEmailRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byEmail[emailKey]; ok && existingID != user.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	r.byEmail[emailKey] = user.ID
	r.byID[user.ID] = cloneUser(user)
	return nil
}

func cloneUser(u *domainuser.User) *domainuser.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Roles = append([]domainuser.Role(nil), u.Roles...)
	return &out
}

// SessionStore keeps bearer sessions in memory.
type SessionStore struct {
	mu        sync.RWMutex
	tokens    map[domainauth.Token]*domainauth.Session
	userIndex map[domainuser.ID]map[domainauth.Token]struct{}
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tokens:    make(map[domainauth.Token]*domainauth.Session),
		userIndex: make(map[domainuser.ID]map[domainauth.Token]struct{}),
	}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil || session.Token == "" {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copySession := *session
	s.tokens[session.Token] = &copySession
	if _, ok := s.userIndex[session.UserID]; !ok {
		s.userIndex[session.UserID] = make(map[domainauth.Token]struct{})
	}
	s.userIndex[session.UserID][session.Token] = struct{}{}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.tokens[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	copySession := *session
	return &copySession, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.tokens[token]
	if !ok {
		return nil
	}
	delete(s.tokens, token)
	if tokens, ok := s.userIndex[session.UserID]; ok {
		delete(tokens, token)
		if len(tokens) == 0 {
			delete(s.userIndex, session.UserID)
		}
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.userIndex[userID] {
		delete(s.tokens, token)
	}
	delete(s.userIndex, userID)
	return nil
}
