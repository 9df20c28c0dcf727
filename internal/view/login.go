package view

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/notify"
	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/validation"
)

// Имена полей форм.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldAmount   = "amount"
	FieldCurrency = "currency"
	FieldProfile  = "profile"
)

// Login реализует представление входа.
type Login struct {
	deps Deps
	Form *form.Form
}

// NewLogin создаёт представление входа.
func NewLogin(deps Deps, opts ...form.Option) *Login {
	opts = append(deps.formOptions(), opts...)
	return &Login{
		deps: deps,
		Form: form.New([]form.Field{
			{Name: FieldEmail, Rule: validation.Email()},
			{Name: FieldPassword, Rule: validation.Password()},
		}, opts...),
	}
}

// Mount открывает представление. Пользователь с сессией перенаправляется в панель.
func (v *Login) Mount(ctx context.Context) (session.Decision, error) {
	dec, err := v.deps.mount(ctx, v.deps.Gate.Public)
	if err != nil || !dec.Render() {
		return dec, err
	}
	v.deps.drainNotification(ctx)
	return dec, nil
}

// Submit отправляет форму входа.
func (v *Login) Submit(ctx context.Context) error {
	return v.Form.Submit(ctx, func(ctx context.Context) error {
		email, password := strings.TrimSpace(v.Form.Value(FieldEmail)), v.Form.Value(FieldPassword)

		resp, err := v.deps.API.Login(ctx, email, password)
		if err != nil {
			v.deps.fail("Erro no login", err, "Credenciais inválidas")
			return err
		}

		return v.deps.signIn(ctx, resp.AccessToken, resp.User, notify.Notification{
			Title:       "Login realizado com sucesso",
			Description: "Bem-vindo ao painel!",
			Type:        notify.TypeSuccess,
		})
	})
}

// Close освобождает ресурсы формы.
func (v *Login) Close() { v.Form.Close() }

// signIn сохраняет сессию, оставляет уведомление и переходит в панель.
func (d Deps) signIn(ctx context.Context, token string, user model.User, n notify.Notification) error {
	sess := model.Session{AccessToken: token, UserName: user.Name, UserEmail: user.Email}
	if err := d.Sessions.Save(ctx, sess); err != nil {
		d.logger().Error("save session", zap.Error(err))
		d.Toaster.Error(titleUnexpected, msgTryLater)
		return err
	}
	if err := d.Relay.Stash(ctx, n); err != nil {
		d.logger().Warn("stash notification", zap.Error(err))
	}

	d.Nav.Navigate(session.RouteDashboard)
	return nil
}
