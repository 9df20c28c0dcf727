// Package model содержит доменные сущности клиента BankOp.
package model

import (
	"encoding/json"
	"time"
)

// Коды монет, используемые API кошельков.
const (
	CoinOpCoin = "OPCOIN"
	CoinBRL    = "BRL"
)

// ConversionRate задаёт фиксированный курс: 5 OpCoins за 1 BRL.
const ConversionRate = 5

// TransactionKind описывает вид операции.
type TransactionKind string

const (
	TransactionConvert  TransactionKind = "CONVERT"
	TransactionTransfer TransactionKind = "TRANSFER"
)

// ProfileNone обозначает незаданный профиль инвестора.
const ProfileNone = "nenhum"

// Инвестиционные профили пользователя.
const (
	ProfileConservative = "conservador"
	ProfileModerate     = "moderado"
	ProfileAggressive   = "arrojado"
)

// Profiles перечисляет допустимые профили в порядке отображения.
var Profiles = []string{ProfileConservative, ProfileModerate, ProfileAggressive}

// Session описывает сохранённую сессию пользователя.
type Session struct {
	AccessToken string
	UserName    string
	UserEmail   string
}

// User представляет пользователя, как его возвращает API аутентификации.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Coin описывает валюту кошелька или транзакции.
type Coin struct {
	ID     string `json:"id,omitempty"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Wallet содержит баланс пользователя в одной валюте.
type Wallet struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
	Coin    Coin    `json:"coin"`
}

// TransactionUser описывает участника транзакции.
type TransactionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TransactionType описывает тип транзакции.
type TransactionType struct {
	ID          string          `json:"id,omitempty"`
	Type        TransactionKind `json:"type"`
	Description string          `json:"description,omitempty"`
}

// Transaction описывает конвертацию или перевод.
type Transaction struct {
	ID         string           `json:"id"`
	FromCoin   Coin             `json:"fromCoin"`
	ToCoin     Coin             `json:"toCoin"`
	AmountFrom float64          `json:"amountFrom"`
	AmountTo   float64          `json:"amountTo"`
	UserID     string           `json:"userId,omitempty"`
	UserFrom   *TransactionUser `json:"userFrom,omitempty"`
	UserTo     *TransactionUser `json:"userTo,omitempty"`
	Type       TransactionType  `json:"type"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// UnmarshalJSON разбирает транзакцию. Нераспознанная дата createdAt даёт нулевое время,
// а не ошибку всего ответа.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.CreatedAt = ParseTime(aux.CreatedAt)
	return nil
}

// Balance содержит балансы пользователя и буфер ввода суммы для конвертации.
type Balance struct {
	OpCoins          float64
	BRLCoins         float64
	OpCoinsToConvert float64
}

// FindWallet возвращает кошелёк с указанным символом валюты.
func FindWallet(wallets []Wallet, symbol string) (Wallet, bool) {
	for _, w := range wallets {
		if w.Coin.Symbol == symbol {
			return w, true
		}
	}
	return Wallet{}, false
}
