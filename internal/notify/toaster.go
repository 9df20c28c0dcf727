package notify

import (
	"sync"
	"time"
)

// DefaultDuration задаёт время показа уведомления.
const DefaultDuration = 5 * time.Second

// Toast описывает показанное уведомление.
type Toast struct {
	ID int64
	Notification
	ExpiresAt time.Time
}

// Toaster показывает уведомления и скрывает их по истечении времени.
type Toaster struct {
	mu       sync.Mutex
	nextID   int64
	toasts   []Toast
	duration time.Duration
	now      func() time.Time
	onShow   func(Toast)
}

// ToasterOption настраивает Toaster.
type ToasterOption func(*Toaster)

// WithDuration задаёт время показа уведомления.
func WithDuration(d time.Duration) ToasterOption {
	return func(t *Toaster) { t.duration = d }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) ToasterOption {
	return func(t *Toaster) { t.now = now }
}

// WithOnShow задаёт функцию, вызываемую при показе уведомления.
func WithOnShow(fn func(Toast)) ToasterOption {
	return func(t *Toaster) { t.onShow = fn }
}

// NewToaster создаёт Toaster.
func NewToaster(opts ...ToasterOption) *Toaster {
	t := &Toaster{duration: DefaultDuration, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Show показывает уведомление и возвращает его идентификатор.
func (t *Toaster) Show(n Notification) int64 {
	t.mu.Lock()
	t.nextID++
	toast := Toast{ID: t.nextID, Notification: n, ExpiresAt: t.now().Add(t.duration)}
	t.toasts = append(t.toasts, toast)
	onShow := t.onShow
	t.mu.Unlock()

	if onShow != nil {
		onShow(toast)
	}
	return toast.ID
}

// Success показывает уведомление об успехе.
func (t *Toaster) Success(title, description string) int64 {
	return t.Show(Notification{Title: title, Description: description, Type: TypeSuccess})
}

// Error показывает уведомление об ошибке.
func (t *Toaster) Error(title, description string) int64 {
	return t.Show(Notification{Title: title, Description: description, Type: TypeError})
}

// Dismiss скрывает уведомление до истечения времени показа.
func (t *Toaster) Dismiss(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, toast := range t.toasts {
		if toast.ID == id {
			t.toasts = append(t.toasts[:i], t.toasts[i+1:]...)
			return
		}
	}
}

// Active возвращает уведомления, время показа которых ещё не истекло.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	active := t.toasts[:0]
	for _, toast := range t.toasts {
		if now.Before(toast.ExpiresAt) {
			active = append(active, toast)
		}
	}
	t.toasts = active

	return append([]Toast(nil), active...)
}
