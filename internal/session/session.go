// Package session хранит сессию пользователя и решает, какое представление показывать.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/storage"
)

// ErrNoSession возвращается, если токен доступа не сохранён.
var ErrNoSession = errors.New("no session")

// Store читает и записывает сессию в долговременное хранилище.
type Store struct {
	storage storage.Storage
}

// NewStore создаёт хранилище сессии поверх s.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Load возвращает сохранённую сессию или ErrNoSession.
func (s *Store) Load(ctx context.Context) (*model.Session, error) {
	token, ok, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return nil, ErrNoSession
	}

	name, _, err := s.storage.Get(ctx, storage.KeyUserName)
	if err != nil {
		return nil, fmt.Errorf("load user name: %w", err)
	}
	email, _, err := s.storage.Get(ctx, storage.KeyUserEmail)
	if err != nil {
		return nil, fmt.Errorf("load user email: %w", err)
	}

	return &model.Session{AccessToken: token, UserName: name, UserEmail: email}, nil
}

// Token возвращает сохранённый токен доступа или ErrNoSession.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, ok, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// Save сохраняет сессию.
func (s *Store) Save(ctx context.Context, sess model.Session) error {
	values := []struct{ key, value string }{
		{storage.KeyAccessToken, sess.AccessToken},
		{storage.KeyUserName, sess.UserName},
		{storage.KeyUserEmail, sess.UserEmail},
	}
	for _, v := range values {
		if err := s.storage.Set(ctx, v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Clear удаляет сессию.
func (s *Store) Clear(ctx context.Context) error {
	for _, key := range []string{storage.KeyAccessToken, storage.KeyUserName, storage.KeyUserEmail} {
		if err := s.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}
