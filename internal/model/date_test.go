package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "afternoon",
			in:   time.Date(2026, time.October, 15, 15, 4, 0, 0, time.Local),
			want: "15 de outubro de 2026, 3:04pm",
		},
		{
			name: "midnight",
			in:   time.Date(2025, time.March, 1, 0, 7, 0, 0, time.Local),
			want: "1 de março de 2025, 12:07am",
		},
		{
			name: "noon",
			in:   time.Date(2025, time.December, 31, 12, 0, 0, 0, time.Local),
			want: "31 de dezembro de 2025, 12:00pm",
		},
		{
			name: "zero time",
			in:   time.Time{},
			want: "Data inválida",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.in); got != tt.want {
				t.Fatalf("FormatDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDate_ConvertsToLocalTime(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("BRT", -3*60*60)
	t.Cleanup(func() { time.Local = orig })

	in := time.Date(2026, time.October, 15, 18, 4, 0, 0, time.UTC)
	if got, want := FormatDate(in), "15 de outubro de 2026, 3:04pm"; got != want {
		t.Fatalf("FormatDate() = %q, want %q", got, want)
	}
}

func TestParseTime(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("BRT", -3*60*60)
	t.Cleanup(func() { time.Local = orig })

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "rfc3339",
			raw:  `"2024-05-01T10:00:00Z"`,
			want: time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "rfc3339 with millis",
			raw:  `"2024-05-01T10:00:00.123-03:00"`,
			want: time.Date(2024, time.May, 1, 13, 0, 0, 123000000, time.UTC),
		},
		{
			name: "space separated without zone is local",
			raw:  `"2024-05-01 10:00:00"`,
			want: time.Date(2024, time.May, 1, 10, 0, 0, 0, time.Local),
		},
		{
			name: "date only",
			raw:  `"2024-05-01"`,
			want: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name: "unix millis",
			raw:  `1714557600000`,
			want: time.UnixMilli(1714557600000),
		},
		{name: "empty string", raw: `""`},
		{name: "null", raw: `null`},
		{name: "garbage", raw: `"ontem"`},
		{name: "object", raw: `{"at":1}`},
		{name: "absent", raw: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(json.RawMessage(tt.raw))
			if !got.Equal(tt.want) {
				t.Fatalf("ParseTime(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTransaction_UnmarshalLenientDate(t *testing.T) {
	var txs []Transaction
	data := `[
		{"id":"a","amountFrom":50,"type":{"type":"CONVERT"},"createdAt":"2024-05-01T10:00:00Z"},
		{"id":"b","amountFrom":10,"type":{"type":"TRANSFER"},"createdAt":""}
	]`
	if err := json.Unmarshal([]byte(data), &txs); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len = %d, want 2", len(txs))
	}
	if txs[0].ID != "a" || txs[0].AmountFrom != 50 || txs[0].Type.Type != TransactionConvert {
		t.Fatalf("unexpected first transaction: %+v", txs[0])
	}
	if !txs[0].CreatedAt.Equal(time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("createdAt = %v", txs[0].CreatedAt)
	}
	if txs[1].ID != "b" || !txs[1].CreatedAt.IsZero() {
		t.Fatalf("unexpected second transaction: %+v", txs[1])
	}
	if got := FormatDate(txs[1].CreatedAt); got != "Data inválida" {
		t.Fatalf("FormatDate() = %q, want Data inválida", got)
	}
}

func TestFindWallet(t *testing.T) {
	wallets := []Wallet{
		{ID: "1", Balance: 100, Coin: Coin{Symbol: CoinOpCoin}},
		{ID: "2", Balance: 20, Coin: Coin{Symbol: CoinBRL}},
	}

	w, ok := FindWallet(wallets, CoinBRL)
	if !ok || w.ID != "2" {
		t.Fatalf("FindWallet(BRL) = %+v, %v", w, ok)
	}

	if _, ok := FindWallet(wallets, "USD"); ok {
		t.Fatalf("FindWallet(USD) must not find a wallet")
	}
}
