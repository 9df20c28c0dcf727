package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidate_EmptyIsRequired(t *testing.T) {
	rules := map[string]Rule{
		"name":     Name(),
		"email":    Email(),
		"password": Password(),
		"amount":   Amount(decimal.NewFromInt(100), "OPCOIN"),
		"choice":   Choice("Selecione uma moeda", "OPCOIN", "BRL"),
	}

	for name, rule := range rules {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, Validate(rule, ""))
		})
	}
}

func TestValidate_Name(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: MsgNameRequired},
		{name: "spaces only", in: "   ", want: MsgNameRequired},
		{name: "too short", in: "Jo", want: MsgNameTooShort},
		{name: "exactly three", in: "Ana", want: ""},
		{name: "accented runes", in: "Zé ", want: MsgNameTooShort},
		{name: "full name", in: "Maria Silva", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(Name(), tt.in))
		})
	}
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: MsgEmailRequired},
		{name: "no at sign", in: "abc", want: MsgEmailInvalid},
		{name: "no domain dot", in: "a@b", want: MsgEmailInvalid},
		{name: "spaces", in: "user @example.com", want: MsgEmailInvalid},
		{name: "valid", in: "user@example.com", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(Email(), tt.in))
		})
	}
}

func TestValidate_Recipient(t *testing.T) {
	rule := Recipient("me@example.com")

	assert.Equal(t, MsgEmailSelf, Validate(rule, "me@example.com"))
	assert.Equal(t, MsgEmailSelf, Validate(rule, "ME@example.com"))
	assert.Equal(t, "", Validate(rule, "friend@example.com"))
	assert.Equal(t, MsgEmailInvalid, Validate(rule, "friend"))
}

func TestValidate_Password(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: MsgPasswordRequired},
		{name: "five chars", in: "12345", want: MsgPasswordTooShort},
		{name: "exactly six", in: "secret", want: ""},
		{name: "longer", in: "secret1", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(Password(), tt.in))
		})
	}
}

func TestValidate_Amount(t *testing.T) {
	rule := Amount(decimal.NewFromInt(100), "OPCOIN")

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "empty", in: "", wantErr: true},
		{name: "zero", in: "0", wantErr: true},
		{name: "negative", in: "-5", wantErr: true},
		{name: "letters", in: "12a", wantErr: true},
		{name: "above balance", in: "200", wantErr: true},
		{name: "just above balance", in: "100.01", wantErr: true},
		{name: "equal to balance", in: "100", wantErr: false},
		{name: "within balance", in: "50", wantErr: false},
		{name: "fraction", in: "0.5", wantErr: false},
		{name: "decimal comma", in: "10,5", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(rule, tt.in)
			if tt.wantErr {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestValidate_AmountExceedsMessage(t *testing.T) {
	got := Validate(Amount(decimal.NewFromInt(100), "OPCOIN"), "200")
	assert.Equal(t, "Quantidade excede o saldo disponível (100 OPCOIN)", got)
}

func TestValidate_AmountWithoutMax(t *testing.T) {
	assert.Empty(t, Validate(Rule{Kind: KindAmount}, "1000000"))
}

func TestValidate_Choice(t *testing.T) {
	rule := Choice("Selecione uma moeda", "OPCOIN", "BRL")

	assert.Equal(t, "Selecione uma moeda", Validate(rule, ""))
	assert.Equal(t, MsgChoiceUnknown, Validate(rule, "USD"))
	assert.Empty(t, Validate(rule, "BRL"))
	assert.Equal(t, MsgChoiceRequired, Validate(Choice(""), " "))
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 12.50 ")
	assert.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("12.5")))

	v, err = ParseAmount(".5")
	assert.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("0.5")))

	_, err = ParseAmount("1.2.3")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
