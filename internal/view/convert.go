package view

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/store"
	"github.com/mmeshcher/bankop-client/internal/validation"
)

var conversionRate = decimal.NewFromInt(model.ConversionRate)

// Convert реализует модальное окно конвертации OpCoins в BRL.
type Convert struct {
	deps    Deps
	onClose func()
	Form    *form.Form
}

// NewConvert создаёт окно конвертации. onClose вызывается после успешной конвертации.
func NewConvert(deps Deps, onClose func(), opts ...form.Option) *Convert {
	opts = append(deps.formOptions(), opts...)
	v := &Convert{
		deps:    deps,
		onClose: onClose,
		Form: form.New([]form.Field{
			{Name: FieldAmount},
		}, opts...),
	}
	v.syncRule()
	return v
}

// syncRule ограничивает сумму текущим балансом OpCoins.
func (v *Convert) syncRule() {
	max := decimal.NewFromFloat(v.deps.Store.State().Balance.OpCoins)
	v.Form.SetRule(FieldAmount, validation.Amount(max, model.CoinOpCoin))
}

// SetAmount обновляет введённую сумму. Во время отправки ввод игнорируется.
func (v *Convert) SetAmount(raw string) {
	if v.Form.Loading() {
		return
	}
	v.syncRule()
	v.Form.SetValue(FieldAmount, raw)

	amount, err := validation.ParseAmount(raw)
	if err != nil {
		amount = decimal.Zero
	}
	v.deps.Store.Dispatch(store.SetOpCoinsToConvert(amount.InexactFloat64()))
}

// Preview возвращает сумму в BRL, которую пользователь получит по фиксированному курсу.
// Значение только для отображения, итоговые балансы рассчитывает сервер.
func (v *Convert) Preview() decimal.Decimal {
	amount, err := validation.ParseAmount(v.Form.Value(FieldAmount))
	if err != nil {
		return decimal.Zero
	}
	return amount.Div(conversionRate)
}

// Submit отправляет конвертацию.
func (v *Convert) Submit(ctx context.Context) error {
	v.syncRule()

	return v.Form.Submit(ctx, func(ctx context.Context) error {
		amount, err := validation.ParseAmount(v.Form.Value(FieldAmount))
		if err != nil {
			return err
		}

		token, err := v.deps.token(ctx)
		if err != nil {
			return err
		}

		res, err := v.deps.API.Convert(ctx, token, amount.InexactFloat64())
		if err != nil {
			v.deps.fail(titleError, err, "Erro ao realizar conversão")
			return err
		}

		v.deps.Store.Dispatch(
			store.SetOpCoins(res.UpdatedOpCoinBalance),
			store.SetBRLCoins(res.UpdatedBRLCoinBalance),
			store.SetOpCoinsToConvert(0),
			store.PrependTransactions{res.NewTransaction},
		)

		v.deps.Toaster.Success("Conversão realizada",
			fmt.Sprintf("Você converteu %s OpCoins com sucesso!", amount.String()))

		if v.onClose != nil {
			v.onClose()
		}
		return nil
	})
}

// Close освобождает ресурсы формы.
func (v *Convert) Close() { v.Form.Close() }
