// Package repository содержит реализацию доступа к данным песочницы BankOp в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/bankop-client/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrUserExists возвращается при попытке создать пользователя с уже существующим e-mail.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrRecipientNotFound возвращается, если получатель перевода не найден.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrSelfTransfer возвращается при попытке перевода самому себе.
	ErrSelfTransfer = errors.New("transfer to self")
	// ErrInsufficientBalance возвращается, если на кошельке недостаточно средств.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrProfileNotFound возвращается, если профиль инвестора не задан.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrProfileExists возвращается при повторном создании профиля.
	ErrProfileExists = errors.New("profile already exists")
)

// Account описывает учётную запись пользователя.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

// ConvertOutcome содержит балансы после конвертации (в сотых долях) и созданную транзакцию.
type ConvertOutcome struct {
	OpCoinBalance int64
	BRLBalance    int64
	Transaction   model.Transaction
}

// TransferOutcome содержит баланс отправителя после перевода (в сотых долях) и созданную транзакцию.
type TransferOutcome struct {
	Balance     int64
	Transaction model.Transaction
}

// querier покрывает общее подмножество pgxpool.Pool и pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, time.Second},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет fn при конфликте сериализации, взаимной блокировке и обрыве соединения.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil || !isRetryable(err) || i == len(r.delays) {
			return err
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateAccount создаёт пользователя и его кошельки OPCOIN и BRL.
// На кошелёк OPCOIN зачисляется bonus (в сотых долях).
func (r *PostgresRepository) CreateAccount(ctx context.Context, acc Account, bonus int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4)`,
		acc.ID, acc.Name, acc.Email, acc.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrUserExists, acc.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO wallets (id, user_id, coin_id, balance)
		 SELECT $2, $1, id, $3 FROM coins WHERE symbol = 'OPCOIN'
		 UNION ALL
		 SELECT $4, $1, id, 0 FROM coins WHERE symbol = 'BRL'`,
		acc.ID, uuid.NewString(), bonus, uuid.NewString(),
	)
	if err != nil {
		return fmt.Errorf("create wallets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAccountByEmail возвращает пользователя по e-mail.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return getAccount(ctx, r.pool, `WHERE email = $1`, email)
}

func getAccount(ctx context.Context, q querier, where string, arg any) (*Account, error) {
	var a Account
	err := q.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users `+where,
		arg,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &a, nil
}

// GetWallets возвращает кошельки пользователя. Балансы переводятся в единицы.
func (r *PostgresRepository) GetWallets(ctx context.Context, userID string) ([]model.Wallet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT w.id, w.balance, c.id, c.symbol, c.name
		 FROM wallets w
		 JOIN coins c ON c.id = w.coin_id
		 WHERE w.user_id = $1
		 ORDER BY c.symbol DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]model.Wallet, 0, 2)
	for rows.Next() {
		var (
			w       model.Wallet
			balance int64
		)
		if err := rows.Scan(&w.ID, &balance, &w.Coin.ID, &w.Coin.Symbol, &w.Coin.Name); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		w.Balance = FromCents(balance)
		wallets = append(wallets, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return wallets, nil
}

const selectTransactions = `SELECT t.id, tt.id, tt.type, tt.description,
	fc.id, fc.symbol, fc.name, tc.id, tc.symbol, tc.name,
	t.amount_from, t.amount_to, t.user_id,
	uf.id, uf.email, uf.name, ut.id, ut.email, ut.name,
	t.created_at
FROM transactions t
JOIN transaction_types tt ON tt.id = t.type_id
JOIN coins fc ON fc.id = t.from_coin_id
JOIN coins tc ON tc.id = t.to_coin_id
LEFT JOIN users uf ON uf.id = t.user_from_id
LEFT JOIN users ut ON ut.id = t.user_to_id
`

// GetTransactions возвращает транзакции пользователя, включая входящие переводы, от новых к старым.
func (r *PostgresRepository) GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		selectTransactions+`WHERE t.user_id = $1 OR t.user_to_id = $1 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]model.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return txs, nil
}

func getTransaction(ctx context.Context, q querier, id string) (model.Transaction, error) {
	return scanTransaction(q.QueryRow(ctx, selectTransactions+`WHERE t.id = $1`, id))
}

func scanTransaction(row pgx.Row) (model.Transaction, error) {
	var (
		t                   model.Transaction
		amountFrom          int64
		amountTo            int64
		fromID, fromEmail   *string
		fromName            *string
		toID, toEmail, toNm *string
	)
	err := row.Scan(&t.ID, &t.Type.ID, &t.Type.Type, &t.Type.Description,
		&t.FromCoin.ID, &t.FromCoin.Symbol, &t.FromCoin.Name,
		&t.ToCoin.ID, &t.ToCoin.Symbol, &t.ToCoin.Name,
		&amountFrom, &amountTo, &t.UserID,
		&fromID, &fromEmail, &fromName, &toID, &toEmail, &toNm,
		&t.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	t.AmountFrom = FromCents(amountFrom)
	t.AmountTo = FromCents(amountTo)
	if fromID != nil {
		t.UserFrom = &model.TransactionUser{ID: *fromID, Email: deref(fromEmail), Name: deref(fromName)}
	}
	if toID != nil {
		t.UserTo = &model.TransactionUser{ID: *toID, Email: deref(toEmail), Name: deref(toNm)}
	}
	return t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// lockWallet блокирует кошелёк пользователя в указанной валюте до конца транзакции.
func lockWallet(ctx context.Context, tx pgx.Tx, userID, symbol string) (string, int64, error) {
	var (
		id      string
		balance int64
	)
	err := tx.QueryRow(ctx,
		`SELECT w.id, w.balance
		 FROM wallets w
		 JOIN coins c ON c.id = w.coin_id
		 WHERE w.user_id = $1 AND c.symbol = $2
		 FOR UPDATE OF w`,
		userID, symbol,
	).Scan(&id, &balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, fmt.Errorf("wallet %s: %w", symbol, ErrUserNotFound)
		}
		return "", 0, fmt.Errorf("lock wallet: %w", err)
	}
	return id, balance, nil
}

func addBalance(ctx context.Context, tx pgx.Tx, walletID string, delta int64) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`UPDATE wallets SET balance = balance + $2 WHERE id = $1 RETURNING balance`,
		walletID, delta,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("update wallet: %w", err)
	}
	return balance, nil
}

type txRecord struct {
	kind       model.TransactionKind
	fromCoin   string
	toCoin     string
	amountFrom int64
	amountTo   int64
	userID     string
	userFromID *string
	userToID   *string
}

func insertTransaction(ctx context.Context, tx pgx.Tx, rec txRecord) (model.Transaction, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, type_id, from_coin_id, to_coin_id, amount_from, amount_to, user_id, user_from_id, user_to_id)
		 VALUES ($1,
		         (SELECT id FROM transaction_types WHERE type = $2),
		         (SELECT id FROM coins WHERE symbol = $3),
		         (SELECT id FROM coins WHERE symbol = $4),
		         $5, $6, $7, $8, $9)`,
		id, string(rec.kind), rec.fromCoin, rec.toCoin, rec.amountFrom, rec.amountTo,
		rec.userID, rec.userFromID, rec.userToID,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return getTransaction(ctx, tx, id)
}

// Convert списывает opCoins с кошелька OPCOIN и зачисляет brl на кошелёк BRL в одной транзакции.
// Суммы в сотых долях. Строки кошельков блокируются на время операции.
func (r *PostgresRepository) Convert(ctx context.Context, userID string, opCoins, brl int64) (*ConvertOutcome, error) {
	var out *ConvertOutcome
	err := r.withRetry(ctx, func() error {
		res, err := r.convert(ctx, userID, opCoins, brl)
		out = res
		return err
	})
	return out, err
}

func (r *PostgresRepository) convert(ctx context.Context, userID string, opCoins, brl int64) (*ConvertOutcome, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	opWallet, opBalance, err := lockWallet(ctx, tx, userID, model.CoinOpCoin)
	if err != nil {
		return nil, err
	}
	brlWallet, _, err := lockWallet(ctx, tx, userID, model.CoinBRL)
	if err != nil {
		return nil, err
	}

	if opCoins > opBalance {
		return nil, ErrInsufficientBalance
	}

	var out ConvertOutcome
	if out.OpCoinBalance, err = addBalance(ctx, tx, opWallet, -opCoins); err != nil {
		return nil, err
	}
	if out.BRLBalance, err = addBalance(ctx, tx, brlWallet, brl); err != nil {
		return nil, err
	}

	out.Transaction, err = insertTransaction(ctx, tx, txRecord{
		kind:       model.TransactionConvert,
		fromCoin:   model.CoinOpCoin,
		toCoin:     model.CoinBRL,
		amountFrom: opCoins,
		amountTo:   brl,
		userID:     userID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &out, nil
}

// Transfer переводит amount (в сотых долях) валюты coin пользователю с e-mail toEmail.
func (r *PostgresRepository) Transfer(ctx context.Context, fromID, toEmail, coin string, amount int64) (*TransferOutcome, error) {
	var out *TransferOutcome
	err := r.withRetry(ctx, func() error {
		res, err := r.transfer(ctx, fromID, toEmail, coin, amount)
		out = res
		return err
	})
	return out, err
}

func (r *PostgresRepository) transfer(ctx context.Context, fromID, toEmail, coin string, amount int64) (*TransferOutcome, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	recipient, err := getAccount(ctx, tx, `WHERE email = $1`, toEmail)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	if recipient.ID == fromID {
		return nil, ErrSelfTransfer
	}

	fromWallet, balance, err := lockWallet(ctx, tx, fromID, coin)
	if err != nil {
		return nil, err
	}
	toWallet, _, err := lockWallet(ctx, tx, recipient.ID, coin)
	if err != nil {
		return nil, err
	}

	if amount > balance {
		return nil, ErrInsufficientBalance
	}

	var out TransferOutcome
	if out.Balance, err = addBalance(ctx, tx, fromWallet, -amount); err != nil {
		return nil, err
	}
	if _, err = addBalance(ctx, tx, toWallet, amount); err != nil {
		return nil, err
	}

	out.Transaction, err = insertTransaction(ctx, tx, txRecord{
		kind:       model.TransactionTransfer,
		fromCoin:   coin,
		toCoin:     coin,
		amountFrom: amount,
		amountTo:   amount,
		userID:     fromID,
		userFromID: &fromID,
		userToID:   &recipient.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &out, nil
}

// GetProfile возвращает профиль инвестора пользователя.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (string, error) {
	var profile *string
	err := r.pool.QueryRow(ctx, `SELECT profile FROM users WHERE id = $1`, userID).Scan(&profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return "", ErrProfileNotFound
	}
	return *profile, nil
}

// CreateProfile задаёт профиль, если он ещё не задан.
func (r *PostgresRepository) CreateProfile(ctx context.Context, userID, profile string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET profile = $2 WHERE id = $1 AND profile IS NULL`,
		userID, profile,
	)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetProfile(ctx, userID); err != nil {
			return err
		}
		return ErrProfileExists
	}
	return nil
}

// UpdateProfile заменяет профиль пользователя.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID, profile string) error {
	return r.setProfile(ctx, userID, &profile)
}

// DeleteProfile удаляет профиль пользователя.
func (r *PostgresRepository) DeleteProfile(ctx context.Context, userID string) error {
	return r.setProfile(ctx, userID, nil)
}

func (r *PostgresRepository) setProfile(ctx context.Context, userID string, profile *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET profile = $2 WHERE id = $1`, userID, profile)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
