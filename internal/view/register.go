package view

import (
	"context"
	"strings"

	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/notify"
	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/validation"
)

// Register реализует представление регистрации.
type Register struct {
	deps Deps
	Form *form.Form
}

// NewRegister создаёт представление регистрации.
func NewRegister(deps Deps, opts ...form.Option) *Register {
	opts = append(deps.formOptions(), opts...)
	return &Register{
		deps: deps,
		Form: form.New([]form.Field{
			{Name: FieldName, Rule: validation.Name()},
			{Name: FieldEmail, Rule: validation.Email()},
			{Name: FieldPassword, Rule: validation.Password()},
		}, opts...),
	}
}

// Mount открывает представление. Пользователь с сессией перенаправляется в панель.
func (v *Register) Mount(ctx context.Context) (session.Decision, error) {
	dec, err := v.deps.mount(ctx, v.deps.Gate.Public)
	if err != nil || !dec.Render() {
		return dec, err
	}
	v.deps.drainNotification(ctx)
	return dec, nil
}

// Submit отправляет форму регистрации.
func (v *Register) Submit(ctx context.Context) error {
	return v.Form.Submit(ctx, func(ctx context.Context) error {
		resp, err := v.deps.API.Register(ctx,
			strings.TrimSpace(v.Form.Value(FieldName)),
			strings.TrimSpace(v.Form.Value(FieldEmail)),
			v.Form.Value(FieldPassword))
		if err != nil {
			v.deps.fail(titleError, err, "Erro ao criar conta")
			return err
		}

		return v.deps.signIn(ctx, resp.AccessToken, resp.User, notify.Notification{
			Description: "Conta criada com sucesso",
			Type:        notify.TypeSuccess,
		})
	})
}

// Close освобождает ресурсы формы.
func (v *Register) Close() { v.Form.Close() }
