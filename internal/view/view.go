// Package view собирает представления BankOp: вход, регистрацию, панель
// и модальные окна конвертации, перевода и профиля.
package view

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/notify"
	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/store"
)

// API определяет вызовы REST API, используемые представлениями.
type API interface {
	Register(ctx context.Context, name, email, password string) (*bankop.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*bankop.AuthResponse, error)
	Wallets(ctx context.Context, token string) ([]model.Wallet, error)
	Transactions(ctx context.Context, token string) ([]model.Transaction, error)
	Convert(ctx context.Context, token string, opCoins float64) (*bankop.ConvertResult, error)
	Transfer(ctx context.Context, token string, req bankop.TransferRequest) (*bankop.TransferResult, error)
	Profile(ctx context.Context, token string) (string, error)
	SaveProfile(ctx context.Context, token, profile string, create bool) error
	DeleteProfile(ctx context.Context, token string) error
}

// Navigator выполняет переход на другое представление.
type Navigator interface {
	Navigate(route session.Route)
}

// Deps содержит общие зависимости представлений.
type Deps struct {
	API      API
	Sessions *session.Store
	Gate     *session.Gate
	Relay    *notify.Relay
	Toaster  *notify.Toaster
	Store    *store.Store
	Nav      Navigator
	Logger   *zap.Logger
	Debounce time.Duration
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Deps) formOptions() []form.Option {
	if d.Debounce > 0 {
		return []form.Option{form.WithDelay(d.Debounce)}
	}
	return nil
}

const (
	titleError      = "Erro"
	titleUnexpected = "Erro inesperado"
	msgTryLater     = "Tente novamente mais tarde."
)

// fail показывает уведомление об ошибке запроса. Сообщение берётся из ответа API,
// иначе используется fallback.
func (d Deps) fail(title string, err error, fallback string) {
	d.logger().Warn("request failed", zap.String("title", title), zap.Error(err))
	d.Toaster.Error(title, bankop.MessageOf(err, fallback))
}

// token возвращает токен сессии. Без сессии выполняется переход на страницу входа.
func (d Deps) token(ctx context.Context) (string, error) {
	token, err := d.Sessions.Token(ctx)
	if errors.Is(err, session.ErrNoSession) {
		d.Nav.Navigate(session.RouteLogin)
	}
	return token, err
}

// mount применяет решение Gate: при необходимости выполняет переход.
func (d Deps) mount(ctx context.Context, check func(context.Context) (session.Decision, error)) (session.Decision, error) {
	dec, err := check(ctx)
	if err != nil {
		return dec, err
	}
	if !dec.Render() {
		d.Nav.Navigate(dec.Redirect)
	}
	return dec, nil
}

// drainNotification показывает уведомление, оставленное предыдущим представлением.
func (d Deps) drainNotification(ctx context.Context) {
	n, err := d.Relay.DrainOnce(ctx)
	if err != nil {
		d.logger().Warn("drain notification", zap.Error(err))
		return
	}
	if n != nil {
		d.Toaster.Show(*n)
	}
}
