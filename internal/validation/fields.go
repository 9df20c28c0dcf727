// Package validation содержит функции валидации полей форм.
package validation

import (
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Kind определяет вид поля формы.
type Kind int

const (
	KindName Kind = iota + 1
	KindEmail
	KindPassword
	KindAmount
	KindChoice
)

// Сообщения об ошибках, показываемые пользователю.
const (
	MsgNameRequired     = "Nome é obrigatório"
	MsgNameTooShort     = "Nome deve ter pelo menos 3 caracteres"
	MsgEmailRequired    = "E-mail é obrigatório"
	MsgEmailInvalid     = "E-mail inválido"
	MsgEmailSelf        = "Não pode transferir para si mesmo"
	MsgPasswordRequired = "Senha é obrigatória"
	MsgPasswordTooShort = "Senha deve ter pelo menos 6 caracteres"
	MsgAmountPositive   = "A quantidade deve ser maior que 0"
	MsgAmountNumeric    = "Digite um valor numérico válido"
	MsgChoiceRequired   = "Selecione uma opção"
	MsgChoiceUnknown    = "Opção inválida"
)

var (
	validate      = validator.New()
	amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)
)

// Rule описывает правило проверки одного поля.
type Rule struct {
	Kind Kind

	// Max задаёт верхнюю границу суммы для KindAmount. Nil означает отсутствие ограничения.
	Max *decimal.Decimal
	// Unit задаёт символ валюты, подставляемый в сообщение о превышении баланса.
	Unit string

	// Choices перечисляет допустимые значения для KindChoice. Пустой список допускает любое непустое значение.
	Choices []string
	// Empty задаёт сообщение для KindChoice, когда значение не выбрано.
	Empty string

	// Forbidden задаёт адрес, который нельзя указывать в поле KindEmail (собственный e-mail при переводе).
	Forbidden string
}

// Name возвращает правило для поля имени.
func Name() Rule { return Rule{Kind: KindName} }

// Email возвращает правило для поля e-mail.
func Email() Rule { return Rule{Kind: KindEmail} }

// Recipient возвращает правило для e-mail получателя перевода, не совпадающего с self.
func Recipient(self string) Rule { return Rule{Kind: KindEmail, Forbidden: self} }

// Password возвращает правило для поля пароля.
func Password() Rule { return Rule{Kind: KindPassword} }

// Amount возвращает правило для суммы, не превышающей max единиц unit.
func Amount(max decimal.Decimal, unit string) Rule {
	return Rule{Kind: KindAmount, Max: &max, Unit: unit}
}

// Choice возвращает правило выбора ровно одного значения из choices.
func Choice(empty string, choices ...string) Rule {
	return Rule{Kind: KindChoice, Empty: empty, Choices: choices}
}

// Validate проверяет значение raw по правилу rule и возвращает текст ошибки.
// Пустая строка означает, что значение корректно.
func Validate(rule Rule, raw string) string {
	switch rule.Kind {
	case KindName:
		return validateName(raw)
	case KindEmail:
		return validateEmail(raw, rule.Forbidden)
	case KindPassword:
		return validatePassword(raw)
	case KindAmount:
		return validateAmount(raw, rule.Max, rule.Unit)
	case KindChoice:
		return validateChoice(raw, rule.Choices, rule.Empty)
	default:
		return ""
	}
}

func validateName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return MsgNameRequired
	}
	if validate.Var(name, "min=3") != nil {
		return MsgNameTooShort
	}
	return ""
}

func validateEmail(raw, forbidden string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		return MsgEmailRequired
	}
	if validate.Var(email, "email") != nil {
		return MsgEmailInvalid
	}
	if forbidden != "" && strings.EqualFold(email, strings.TrimSpace(forbidden)) {
		return MsgEmailSelf
	}
	return ""
}

func validatePassword(raw string) string {
	if raw == "" {
		return MsgPasswordRequired
	}
	if validate.Var(raw, "min=6") != nil {
		return MsgPasswordTooShort
	}
	return ""
}

func validateAmount(raw string, max *decimal.Decimal, unit string) string {
	amount, err := ParseAmount(raw)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			return MsgAmountPositive
		}
		return MsgAmountNumeric
	}
	if !amount.IsPositive() {
		return MsgAmountPositive
	}
	if max != nil && amount.GreaterThan(*max) {
		return "Quantidade excede o saldo disponível (" + strings.TrimSpace(max.String()+" "+unit) + ")"
	}
	return ""
}

func validateChoice(raw string, choices []string, empty string) string {
	if strings.TrimSpace(raw) == "" {
		if empty != "" {
			return empty
		}
		return MsgChoiceRequired
	}
	if len(choices) > 0 && !slices.Contains(choices, raw) {
		return MsgChoiceUnknown
	}
	return ""
}

// ParseAmount разбирает введённую пользователем сумму. Десятичная запятая допускается.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if s == "" || s == "." || !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	return decimal.NewFromString(s)
}
