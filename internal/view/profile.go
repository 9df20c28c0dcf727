package view

import (
	"context"
	"sync"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/store"
	"github.com/mmeshcher/bankop-client/internal/validation"
)

// Profile реализует модальное окно выбора профиля инвестора.
type Profile struct {
	deps    Deps
	onClose func()
	Form    *form.Form

	mu     sync.Mutex
	exists bool
}

// NewProfile создаёт окно профиля. onClose вызывается после сохранения или удаления профиля.
func NewProfile(deps Deps, onClose func(), opts ...form.Option) *Profile {
	opts = append(deps.formOptions(), opts...)
	return &Profile{
		deps:    deps,
		onClose: onClose,
		Form: form.New([]form.Field{
			{Name: FieldProfile, Rule: validation.Choice("Selecione um perfil", model.Profiles...)},
		}, opts...),
	}
}

// Mount загружает текущий профиль. Ответ 404 означает, что профиль ещё не выбран.
func (v *Profile) Mount(ctx context.Context) error {
	token, err := v.deps.token(ctx)
	if err != nil {
		return err
	}

	profile, err := v.deps.API.Profile(ctx, token)
	switch {
	case bankop.IsNotFound(err):
		v.setExists(false)
		v.deps.Store.Dispatch(store.ResetProfile{})
		return nil
	case err != nil:
		v.deps.fail(titleError, err, "Erro ao carregar perfil")
		return err
	}

	v.setExists(profile != "" && profile != model.ProfileNone)
	v.deps.Store.Dispatch(store.SetProfile(profile))
	v.Form.SetValue(FieldProfile, profile)
	return nil
}

// SetProfile обновляет выбранный профиль.
func (v *Profile) SetProfile(profile string) {
	v.Form.SetValue(FieldProfile, profile)
}

// Submit сохраняет профиль: создаёт его, если профиля ещё нет, иначе обновляет.
func (v *Profile) Submit(ctx context.Context) error {
	return v.Form.Submit(ctx, func(ctx context.Context) error {
		token, err := v.deps.token(ctx)
		if err != nil {
			return err
		}

		profile := v.Form.Value(FieldProfile)
		if err := v.deps.API.SaveProfile(ctx, token, profile, !v.Exists()); err != nil {
			v.deps.fail(titleError, err, "Erro ao atualizar perfil")
			return err
		}

		v.setExists(true)
		v.deps.Store.Dispatch(store.SetProfile(profile))
		v.deps.Toaster.Success("Perfil atualizado", "Seu perfil de investidor foi salvo.")

		if v.onClose != nil {
			v.onClose()
		}
		return nil
	})
}

// Delete удаляет профиль инвестора.
func (v *Profile) Delete(ctx context.Context) error {
	return v.Form.Do(ctx, func(ctx context.Context) error {
		token, err := v.deps.token(ctx)
		if err != nil {
			return err
		}

		if err := v.deps.API.DeleteProfile(ctx, token); err != nil {
			v.deps.fail(titleError, err, "Erro ao remover perfil")
			return err
		}

		v.setExists(false)
		v.deps.Store.Dispatch(store.ResetProfile{})
		v.deps.Toaster.Success("Perfil removido", "Seu perfil de investidor foi removido.")

		if v.onClose != nil {
			v.onClose()
		}
		return nil
	})
}

// Exists сообщает, сохранён ли профиль на сервере.
func (v *Profile) Exists() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exists
}

func (v *Profile) setExists(exists bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.exists = exists
}

// Close освобождает ресурсы формы.
func (v *Profile) Close() { v.Form.Close() }
