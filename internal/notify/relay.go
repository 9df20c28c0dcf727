// Package notify содержит уведомления: их передачу между представлениями и показ.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmeshcher/bankop-client/internal/storage"
)

// Type задаёт вид уведомления.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// Notification описывает уведомление для пользователя.
type Notification struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
}

// Relay передаёт уведомление через переход между представлениями.
type Relay struct {
	storage storage.Storage
}

// NewRelay создаёт Relay поверх долговременного хранилища.
func NewRelay(s storage.Storage) *Relay {
	return &Relay{storage: s}
}

// Stash сохраняет уведомление перед переходом на другое представление.
func (r *Relay) Stash(ctx context.Context, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := r.storage.Set(ctx, storage.KeyToast, string(raw)); err != nil {
		return fmt.Errorf("stash notification: %w", err)
	}
	return nil
}

// DrainOnce читает сохранённое уведомление и сразу удаляет его.
// Второй вызов ничего не находит.
func (r *Relay) DrainOnce(ctx context.Context) (*Notification, error) {
	raw, ok, err := r.storage.Get(ctx, storage.KeyToast)
	if err != nil {
		return nil, fmt.Errorf("read notification: %w", err)
	}
	if !ok {
		return nil, nil
	}
	if err := r.storage.Delete(ctx, storage.KeyToast); err != nil {
		return nil, fmt.Errorf("delete notification: %w", err)
	}

	var n Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &n, nil
}
