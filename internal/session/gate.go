package session

import (
	"context"
	"errors"
)

// Route задаёт адрес представления.
type Route string

const (
	RouteLogin     Route = "/"
	RouteRegister  Route = "/criar-conta"
	RouteDashboard Route = "/painel"
)

// Status описывает статус аутентификации представления.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthorized
	StatusAuthorized
)

func (s Status) String() string {
	switch s {
	case StatusUnauthorized:
		return "unauthorized"
	case StatusAuthorized:
		return "authorized"
	default:
		return "loading"
	}
}

// Decision содержит результат проверки при открытии представления.
// Если Redirect не пуст, представление не отрисовывается.
type Decision struct {
	Status   Status
	Redirect Route
}

// Render сообщает, нужно ли отрисовывать представление.
func (d Decision) Render() bool {
	return d.Redirect == ""
}

// Gate решает, показывать ли представление, по наличию токена.
// Срок действия токена не проверяется.
type Gate struct {
	sessions *Store
}

// NewGate создаёт Gate поверх хранилища сессии.
func NewGate(sessions *Store) *Gate {
	return &Gate{sessions: sessions}
}

// Protected проверяет защищённое представление: без токена выполняется переход на страницу входа.
func (g *Gate) Protected(ctx context.Context) (Decision, error) {
	ok, err := g.hasToken(ctx)
	if err != nil {
		return Decision{Status: StatusLoading}, err
	}
	if !ok {
		return Decision{Status: StatusUnauthorized, Redirect: RouteLogin}, nil
	}
	return Decision{Status: StatusAuthorized}, nil
}

// Public проверяет публичное представление: с токеном выполняется переход в панель.
func (g *Gate) Public(ctx context.Context) (Decision, error) {
	ok, err := g.hasToken(ctx)
	if err != nil {
		return Decision{Status: StatusLoading}, err
	}
	if ok {
		return Decision{Status: StatusAuthorized, Redirect: RouteDashboard}, nil
	}
	return Decision{Status: StatusUnauthorized}, nil
}

func (g *Gate) hasToken(ctx context.Context) (bool, error) {
	_, err := g.sessions.Token(ctx)
	if errors.Is(err, ErrNoSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
