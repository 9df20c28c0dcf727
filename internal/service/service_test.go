package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/repository"
)

type stubRepo struct {
	created      repository.Account
	createdBonus int64
	createErr    error

	account    *repository.Account
	accountErr error

	convertOp, convertBRL int64
	convertOut            *repository.ConvertOutcome
	convertErr            error

	transferEmail, transferCoin string
	transferAmount              int64
	transferOut                 *repository.TransferOutcome
	transferErr                 error

	profileCreated, profileUpdated string
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateAccount(ctx context.Context, acc repository.Account, bonus int64) error {
	s.created, s.createdBonus = acc, bonus
	return s.createErr
}

func (s *stubRepo) GetAccountByEmail(ctx context.Context, email string) (*repository.Account, error) {
	return s.account, s.accountErr
}

func (s *stubRepo) GetWallets(ctx context.Context, userID string) ([]model.Wallet, error) {
	return nil, nil
}

func (s *stubRepo) GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return nil, nil
}

func (s *stubRepo) Convert(ctx context.Context, userID string, opCoins, brl int64) (*repository.ConvertOutcome, error) {
	s.convertOp, s.convertBRL = opCoins, brl
	return s.convertOut, s.convertErr
}

func (s *stubRepo) Transfer(ctx context.Context, fromID, toEmail, coin string, amount int64) (*repository.TransferOutcome, error) {
	s.transferEmail, s.transferCoin, s.transferAmount = toEmail, coin, amount
	return s.transferOut, s.transferErr
}

func (s *stubRepo) GetProfile(ctx context.Context, userID string) (string, error) {
	return "", repository.ErrProfileNotFound
}

func (s *stubRepo) CreateProfile(ctx context.Context, userID, profile string) error {
	s.profileCreated = profile
	return nil
}

func (s *stubRepo) UpdateProfile(ctx context.Context, userID, profile string) error {
	s.profileUpdated = profile
	return nil
}

func (s *stubRepo) DeleteProfile(ctx context.Context, userID string) error { return nil }

func newTestService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.MinCost}
}

func TestRegisterUser_HashesPasswordAndCreditsBonus(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	acc, err := svc.RegisterUser(context.Background(), " Maria ", " Maria@Example.com", "secret1")
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}

	if acc.ID == "" || acc.Name != "Maria" || acc.Email != "maria@example.com" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if repo.createdBonus != 500000 {
		t.Fatalf("bonus = %d, want 500000", repo.createdBonus)
	}
	if err := bcrypt.CompareHashAndPassword(repo.created.PasswordHash, []byte("secret1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestRegisterUser_Duplicate(t *testing.T) {
	repo := &stubRepo{createErr: repository.ErrUserExists}
	_, err := newTestService(repo).RegisterUser(context.Background(), "Maria", "maria@example.com", "secret1")
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}

func TestAuthenticateUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	acc := &repository.Account{ID: "u1", Email: "user@example.com", PasswordHash: hash}

	tests := []struct {
		name     string
		repo     *stubRepo
		password string
		wantErr  error
	}{
		{name: "ok", repo: &stubRepo{account: acc}, password: "secret1"},
		{name: "wrong password", repo: &stubRepo{account: acc}, password: "secret2", wantErr: ErrInvalidCredentials},
		{name: "unknown user", repo: &stubRepo{accountErr: repository.ErrUserNotFound}, password: "secret1", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestService(tt.repo).AuthenticateUser(context.Background(), "user@example.com", tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != "u1" {
				t.Fatalf("id = %s, want u1", got.ID)
			}
		})
	}
}

func TestConvert_RateAndRounding(t *testing.T) {
	repo := &stubRepo{convertOut: &repository.ConvertOutcome{
		OpCoinBalance: 5000,
		BRLBalance:    1000,
		Transaction:   model.Transaction{ID: "c1"},
	}}
	svc := newTestService(repo)

	res, err := svc.Convert(context.Background(), "u1", 50)
	if err != nil {
		t.Fatalf("Convert error: %v", err)
	}
	if repo.convertOp != 5000 || repo.convertBRL != 1000 {
		t.Fatalf("repo got op=%d brl=%d, want 5000/1000", repo.convertOp, repo.convertBRL)
	}
	if res.UpdatedOpCoinBalance != 50 || res.UpdatedBRLCoinBalance != 10 || res.NewTransaction.ID != "c1" {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := svc.Convert(context.Background(), "u1", 0.12); err != nil {
		t.Fatalf("Convert 0.12 error: %v", err)
	}
	if repo.convertOp != 12 || repo.convertBRL != 2 {
		t.Fatalf("repo got op=%d brl=%d, want 12/2", repo.convertOp, repo.convertBRL)
	}
}

func TestConvert_InvalidAmount(t *testing.T) {
	for _, amount := range []float64{0, -1, 1.234, 0.01, 1e17} {
		_, err := newTestService(&stubRepo{}).Convert(context.Background(), "u1", amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestTransfer(t *testing.T) {
	repo := &stubRepo{transferOut: &repository.TransferOutcome{Balance: 750}}
	svc := newTestService(repo)

	res, err := svc.Transfer(context.Background(), "u1", bankop.TransferRequest{
		Email:      "Friend@Example.com ",
		AmountCoin: "brl",
		Amount:     2.5,
	})
	if err != nil {
		t.Fatalf("Transfer error: %v", err)
	}
	if repo.transferEmail != "friend@example.com" || repo.transferCoin != model.CoinBRL || repo.transferAmount != 250 {
		t.Fatalf("unexpected repo args: %s %s %d", repo.transferEmail, repo.transferCoin, repo.transferAmount)
	}
	if res.NewBalance != 7.5 || res.AmountCoin != model.CoinBRL || res.Amount != 2.5 {
		t.Fatalf("unexpected result: %+v", res)
	}

	_, err = svc.Transfer(context.Background(), "u1", bankop.TransferRequest{Email: "a@b.c", AmountCoin: "USD", Amount: 1})
	if !errors.Is(err, ErrUnknownCoin) {
		t.Fatalf("err = %v, want ErrUnknownCoin", err)
	}
}

func TestSaveProfile(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	if err := svc.SaveProfile(context.Background(), "u1", model.ProfileModerate, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.SaveProfile(context.Background(), "u1", model.ProfileAggressive, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.profileCreated != model.ProfileModerate || repo.profileUpdated != model.ProfileAggressive {
		t.Fatalf("unexpected repo calls: %+v", repo)
	}

	if err := svc.SaveProfile(context.Background(), "u1", "ousado", true); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("err = %v, want ErrUnknownProfile", err)
	}
}
