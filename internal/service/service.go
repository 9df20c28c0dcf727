// Package service реализует бизнес-логику песочницы API BankOp.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/repository"
)

// SignUpBonus задаёт количество OpCoins, начисляемое при регистрации.
const SignUpBonus = 5000

var (
	// ErrInvalidCredentials возвращается при неверном e-mail или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidAmount возвращается при неположительной или слишком точной сумме.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnknownCoin возвращается для валюты, отличной от OPCOIN и BRL.
	ErrUnknownCoin = errors.New("unknown coin")
	// ErrUnknownProfile возвращается для неизвестного профиля инвестора.
	ErrUnknownProfile = errors.New("unknown profile")
)

var conversionRate = decimal.NewFromInt(model.ConversionRate)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateAccount(ctx context.Context, acc repository.Account, bonus int64) error
	GetAccountByEmail(ctx context.Context, email string) (*repository.Account, error)
	GetWallets(ctx context.Context, userID string) ([]model.Wallet, error)
	GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	Convert(ctx context.Context, userID string, opCoins, brl int64) (*repository.ConvertOutcome, error)
	Transfer(ctx context.Context, fromID, toEmail, coin string, amount int64) (*repository.TransferOutcome, error)
	GetProfile(ctx context.Context, userID string) (string, error)
	CreateProfile(ctx context.Context, userID, profile string) error
	UpdateProfile(ctx context.Context, userID, profile string) error
	DeleteProfile(ctx context.Context, userID string) error
}

// Service содержит бизнес-логику песочницы.
type Service struct {
	repo Repository
	cost int
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, cost: bcrypt.DefaultCost}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует пользователя и начисляет бонус за регистрацию.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (*repository.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := repository.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
	}

	bonus, err := repository.ToCents(SignUpBonus)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateAccount(ctx, acc, bonus); err != nil {
		return nil, err
	}
	return &acc, nil
}

// AuthenticateUser проверяет e-mail и пароль и возвращает учётную запись.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*repository.Account, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// Wallets возвращает кошельки пользователя.
func (s *Service) Wallets(ctx context.Context, userID string) ([]model.Wallet, error) {
	return s.repo.GetWallets(ctx, userID)
}

// Transactions возвращает историю транзакций пользователя.
func (s *Service) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.repo.GetTransactions(ctx, userID)
}

// Convert конвертирует opCoins в BRL по курсу 5:1. Результат округляется до сотых.
func (s *Service) Convert(ctx context.Context, userID string, opCoins float64) (*bankop.ConvertResult, error) {
	opCents, err := positiveCents(opCoins)
	if err != nil {
		return nil, err
	}

	brl := decimal.New(opCents, -2).Div(conversionRate).Round(2)
	brlCents := brl.Shift(2).IntPart()
	if brlCents <= 0 {
		return nil, ErrInvalidAmount
	}

	out, err := s.repo.Convert(ctx, userID, opCents, brlCents)
	if err != nil {
		return nil, err
	}

	return &bankop.ConvertResult{
		UpdatedOpCoinBalance:  repository.FromCents(out.OpCoinBalance),
		UpdatedBRLCoinBalance: repository.FromCents(out.BRLBalance),
		NewTransaction:        out.Transaction,
	}, nil
}

// Transfer переводит средства пользователю с указанным e-mail.
func (s *Service) Transfer(ctx context.Context, userID string, req bankop.TransferRequest) (*bankop.TransferResult, error) {
	coin := strings.ToUpper(strings.TrimSpace(req.AmountCoin))
	if coin != model.CoinOpCoin && coin != model.CoinBRL {
		return nil, ErrUnknownCoin
	}

	cents, err := positiveCents(req.Amount)
	if err != nil {
		return nil, err
	}

	out, err := s.repo.Transfer(ctx, userID, normalizeEmail(req.Email), coin, cents)
	if err != nil {
		return nil, err
	}

	return &bankop.TransferResult{
		NewBalance:     repository.FromCents(out.Balance),
		AmountCoin:     coin,
		Amount:         repository.FromCents(cents),
		NewTransaction: out.Transaction,
	}, nil
}

// Profile возвращает профиль инвестора.
func (s *Service) Profile(ctx context.Context, userID string) (string, error) {
	return s.repo.GetProfile(ctx, userID)
}

// SaveProfile создаёт (create=true) или обновляет профиль инвестора.
func (s *Service) SaveProfile(ctx context.Context, userID, profile string, create bool) error {
	if !isKnownProfile(profile) {
		return ErrUnknownProfile
	}
	if create {
		return s.repo.CreateProfile(ctx, userID, profile)
	}
	return s.repo.UpdateProfile(ctx, userID, profile)
}

// DeleteProfile удаляет профиль инвестора.
func (s *Service) DeleteProfile(ctx context.Context, userID string) error {
	return s.repo.DeleteProfile(ctx, userID)
}

func positiveCents(amount float64) (int64, error) {
	cents, err := repository.ToCents(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func isKnownProfile(profile string) bool {
	for _, p := range model.Profiles {
		if p == profile {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
