package view

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/store"
)

// Logout завершает сессию: удаляет токен и данные пользователя, сбрасывает
// состояние и переходит на страницу входа.
func Logout(ctx context.Context, deps Deps) error {
	if err := deps.Sessions.Clear(ctx); err != nil {
		deps.logger().Error("clear session", zap.Error(err))
		deps.Toaster.Error(titleUnexpected, msgTryLater)
		return err
	}

	deps.Store.Dispatch(
		store.SetOpCoins(0),
		store.SetBRLCoins(0),
		store.SetOpCoinsToConvert(0),
		store.ResetTransactions{},
		store.ResetProfile{},
	)

	deps.Nav.Navigate(session.RouteLogin)
	return nil
}
