// Package store содержит глобальное состояние клиента: балансы, транзакции и профиль.
// Состояние меняется только через действия, которые применяет чистая функция Reduce.
package store

import (
	"slices"
	"sync"

	"github.com/mmeshcher/bankop-client/internal/model"
)

// State содержит снимок глобального состояния.
type State struct {
	Balance      model.Balance
	Transactions []model.Transaction
	Profile      string
}

// Action изменяет состояние.
type Action interface {
	apply(State) State
}

// SetOpCoins заменяет баланс OpCoins.
type SetOpCoins float64

// SetBRLCoins заменяет баланс BRL.
type SetBRLCoins float64

// SetOpCoinsToConvert заменяет буфер суммы для конвертации.
type SetOpCoinsToConvert float64

// SetTransactions заменяет список транзакций целиком.
type SetTransactions []model.Transaction

// PrependTransactions добавляет новые транзакции в начало списка.
type PrependTransactions []model.Transaction

// ResetTransactions очищает список транзакций.
type ResetTransactions struct{}

// SetProfile заменяет профиль инвестора.
type SetProfile string

// ResetProfile сбрасывает профиль в значение по умолчанию.
type ResetProfile struct{}

func (a SetOpCoins) apply(s State) State {
	s.Balance.OpCoins = float64(a)
	return s
}

func (a SetBRLCoins) apply(s State) State {
	s.Balance.BRLCoins = float64(a)
	return s
}

func (a SetOpCoinsToConvert) apply(s State) State {
	s.Balance.OpCoinsToConvert = float64(a)
	return s
}

func (a SetTransactions) apply(s State) State {
	s.Transactions = slices.Clone([]model.Transaction(a))
	return s
}

func (a PrependTransactions) apply(s State) State {
	s.Transactions = append(slices.Clone([]model.Transaction(a)), s.Transactions...)
	return s
}

func (ResetTransactions) apply(s State) State {
	s.Transactions = nil
	return s
}

func (a SetProfile) apply(s State) State {
	s.Profile = string(a)
	return s
}

func (ResetProfile) apply(s State) State {
	s.Profile = model.ProfileNone
	return s
}

// Initial возвращает начальное состояние.
func Initial() State {
	return State{Profile: model.ProfileNone}
}

// Reduce применяет действие к состоянию и возвращает новое состояние.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

// Store хранит состояние и оповещает подписчиков об изменениях.
type Store struct {
	mu          sync.RWMutex
	state       State
	subscribers []func(State)
}

// New создаёт хранилище с начальным состоянием.
func New() *Store {
	return &Store{state: Initial()}
}

// Dispatch применяет действия по порядку и оповещает подписчиков.
func (s *Store) Dispatch(actions ...Action) {
	s.mu.Lock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	state := s.snapshotLocked()
	subs := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// State возвращает копию текущего состояния.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// Subscribe регистрирует функцию, вызываемую после каждого Dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Transactions = slices.Clone(s.state.Transactions)
	return st
}
