package form

import (
	"sync"
	"time"
)

// DefaultDelay задаёт окно тишины перед повторной валидацией поля.
const DefaultDelay = 500 * time.Millisecond

// Debouncer откладывает вызов функции до тех пор, пока по ключу не перестанут
// поступать новые вызовы Schedule в течение delay. Каждый новый Schedule
// отменяет ранее запланированный вызов по тому же ключу.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingCall
	seq     uint64
	stopped bool
}

type pendingCall struct {
	timer *time.Timer
	seq   uint64
}

// NewDebouncer создаёт Debouncer с указанным окном тишины.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Schedule планирует вызов fn по ключу key, отменяя предыдущий.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.pending[key] = &pendingCall{
		seq: seq,
		timer: time.AfterFunc(d.delay, func() {
			d.mu.Lock()
			p, ok := d.pending[key]
			// таймер мог сработать одновременно с перепланированием
			if !ok || p.seq != seq || d.stopped {
				d.mu.Unlock()
				return
			}
			delete(d.pending, key)
			d.mu.Unlock()

			fn()
		}),
	}
}

// Cancel отменяет запланированный вызов по ключу key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending сообщает, есть ли запланированный вызов по ключу key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.pending[key]
	return ok
}

// Stop отменяет все запланированные вызовы. После Stop новые вызовы не планируются.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}
