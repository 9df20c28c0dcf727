package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/store"
	"github.com/mmeshcher/bankop-client/internal/validation"
)

// Currencies перечисляет валюты, доступные для перевода.
var Currencies = []string{model.CoinOpCoin, model.CoinBRL}

// Transfer реализует модальное окно перевода другому пользователю.
type Transfer struct {
	deps    Deps
	onClose func()
	self    string
	Form    *form.Form
}

// NewTransfer создаёт окно перевода. onClose вызывается после успешного перевода.
func NewTransfer(deps Deps, onClose func(), opts ...form.Option) *Transfer {
	opts = append(deps.formOptions(), opts...)
	v := &Transfer{
		deps:    deps,
		onClose: onClose,
		Form: form.New([]form.Field{
			{Name: FieldEmail},
			{Name: FieldCurrency, Rule: validation.Choice("Selecione uma moeda", Currencies...)},
			{Name: FieldAmount},
		}, opts...),
	}
	v.syncRules()
	return v
}

// Mount загружает e-mail текущего пользователя, чтобы запретить перевод самому себе.
func (v *Transfer) Mount(ctx context.Context) error {
	sess, err := v.deps.Sessions.Load(ctx)
	if err != nil {
		return err
	}
	v.self = sess.UserEmail
	v.syncRules()
	return nil
}

// syncRules обновляет правила, зависящие от сессии, выбранной валюты и балансов.
func (v *Transfer) syncRules() {
	v.Form.SetRule(FieldEmail, validation.Recipient(v.self))

	bal := v.deps.Store.State().Balance
	currency := v.Form.Value(FieldCurrency)

	var max decimal.Decimal
	switch currency {
	case model.CoinBRL:
		max = decimal.NewFromFloat(bal.BRLCoins)
	case model.CoinOpCoin:
		max = decimal.NewFromFloat(bal.OpCoins)
	default:
		// пока валюта не выбрана, сумма проверяется только на положительность
		v.Form.SetRule(FieldAmount, validation.Rule{Kind: validation.KindAmount})
		return
	}
	v.Form.SetRule(FieldAmount, validation.Amount(max, currency))
}

// SetRecipient обновляет e-mail получателя.
func (v *Transfer) SetRecipient(email string) {
	v.Form.SetValue(FieldEmail, strings.TrimSpace(email))
}

// SetCurrency обновляет выбранную валюту.
func (v *Transfer) SetCurrency(currency string) {
	v.Form.SetValue(FieldCurrency, currency)
	v.syncRules()
}

// SetAmount обновляет сумму перевода.
func (v *Transfer) SetAmount(raw string) {
	v.syncRules()
	v.Form.SetValue(FieldAmount, raw)
}

// Submit отправляет перевод.
func (v *Transfer) Submit(ctx context.Context) error {
	v.syncRules()

	return v.Form.Submit(ctx, func(ctx context.Context) error {
		amount, err := validation.ParseAmount(v.Form.Value(FieldAmount))
		if err != nil {
			return err
		}

		token, err := v.deps.token(ctx)
		if err != nil {
			return err
		}

		res, err := v.deps.API.Transfer(ctx, token, bankop.TransferRequest{
			Email:      v.Form.Value(FieldEmail),
			AmountCoin: v.Form.Value(FieldCurrency),
			Amount:     amount.InexactFloat64(),
		})
		if err != nil {
			v.deps.fail(titleError, err, "Erro ao realizar transferência.")
			return err
		}

		actions := []store.Action{store.PrependTransactions{res.NewTransaction}}
		switch res.AmountCoin {
		case model.CoinBRL:
			actions = append(actions, store.SetBRLCoins(res.NewBalance))
		case model.CoinOpCoin:
			actions = append(actions, store.SetOpCoins(res.NewBalance))
		}
		v.deps.Store.Dispatch(actions...)

		v.deps.Toaster.Success("Transferência realizada",
			fmt.Sprintf("Você transferiu %s %s com sucesso!", FormatAmount(res.Amount), res.AmountCoin))

		if v.onClose != nil {
			v.onClose()
		}
		return nil
	})
}

// Close освобождает ресурсы формы.
func (v *Transfer) Close() { v.Form.Close() }
