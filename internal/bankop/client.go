// Package bankop предоставляет клиент REST API BankOp.
package bankop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/mmeshcher/bankop-client/internal/model"
)

// ErrNotConfigured возвращается, если базовый адрес API не задан.
var ErrNotConfigured = errors.New("bankop client not configured")

// APIError описывает ответ API с кодом, отличным от 2xx.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d: %s", e.StatusCode, e.Message)
}

// MessageOf возвращает сообщение из ответа API или fallback, если сообщения нет.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsNotFound сообщает, ответил ли API кодом 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client инкапсулирует HTTP-взаимодействие с API BankOp.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithTimeout ограничивает время выполнения одного запроса. Ноль означает отсутствие ограничения.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger задаёт логгер клиента.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient создаёт клиент API BankOp по указанному адресу.
func NewClient(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthResponse описывает ответ на регистрацию и вход.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	User        model.User `json:"user"`
}

// ConvertResult описывает ответ на конвертацию OpCoins в BRL.
type ConvertResult struct {
	UpdatedOpCoinBalance  float64           `json:"updatedOpCoinBalance"`
	UpdatedBRLCoinBalance float64           `json:"updatedBRLCoinBalance"`
	NewTransaction        model.Transaction `json:"newTransaction"`
}

// TransferRequest содержит параметры перевода.
type TransferRequest struct {
	Email      string  `json:"email"`
	AmountCoin string  `json:"amountCoin"`
	Amount     float64 `json:"amount"`
}

// TransferResult описывает ответ на перевод.
type TransferResult struct {
	NewBalance     float64           `json:"newBalance"`
	AmountCoin     string            `json:"amountCoin"`
	Amount         float64           `json:"amount"`
	NewTransaction model.Transaction `json:"newTransaction"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type convertRequest struct {
	OpCoins float64 `json:"opCoins"`
}

type profileBody struct {
	Profile string `json:"profile"`
}

// Register регистрирует нового пользователя.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", "", registerRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login выполняет вход пользователя.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Wallets возвращает кошельки пользователя.
func (c *Client) Wallets(ctx context.Context, token string) ([]model.Wallet, error) {
	var resp []model.Wallet
	if err := c.do(ctx, http.MethodGet, "/wallets", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Transactions возвращает историю транзакций пользователя.
func (c *Client) Transactions(ctx context.Context, token string) ([]model.Transaction, error) {
	var resp []model.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Convert конвертирует указанное количество OpCoins в BRL.
func (c *Client) Convert(ctx context.Context, token string, opCoins float64) (*ConvertResult, error) {
	var resp ConvertResult
	if err := c.do(ctx, http.MethodPatch, "/wallets/convert", token, convertRequest{OpCoins: opCoins}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transfer переводит средства другому пользователю.
func (c *Client) Transfer(ctx context.Context, token string, req TransferRequest) (*TransferResult, error) {
	var resp TransferResult
	if err := c.do(ctx, http.MethodPost, "/wallets/transfer", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile возвращает профиль инвестора пользователя.
func (c *Client) Profile(ctx context.Context, token string) (string, error) {
	var resp profileBody
	if err := c.do(ctx, http.MethodGet, "/users/profile", token, nil, &resp); err != nil {
		return "", err
	}
	return resp.Profile, nil
}

// SaveProfile создаёт (create=true, POST) или обновляет (PUT) профиль инвестора.
func (c *Client) SaveProfile(ctx context.Context, token, profile string, create bool) error {
	method := http.MethodPut
	if create {
		method = http.MethodPost
	}
	return c.do(ctx, method, "/users/profile", token, profileBody{Profile: profile}, nil)
}

// DeleteProfile удаляет профиль инвестора.
func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/users/profile", token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if c == nil || c.baseURL == "" {
		return ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		c.logger.Debug("bankop request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage извлекает текст ошибки из тела ответа: поле message (строка или массив строк) или error.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	msg := gjson.GetBytes(body, "message")
	if msg.IsArray() {
		if first := msg.Get("0"); first.Type == gjson.String {
			return first.String()
		}
	}
	if msg.Type == gjson.String && msg.String() != "" {
		return msg.String()
	}

	if e := gjson.GetBytes(body, "error"); e.Type == gjson.String {
		return e.String()
	}
	return ""
}
