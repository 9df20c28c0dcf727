// Package handler содержит HTTP-обработчики песочницы API BankOp.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/middleware"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/repository"
	"github.com/mmeshcher/bankop-client/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, name, email, password string) (*repository.Account, error)
	AuthenticateUser(ctx context.Context, email, password string) (*repository.Account, error)
	Wallets(ctx context.Context, userID string) ([]model.Wallet, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	Convert(ctx context.Context, userID string, opCoins float64) (*bankop.ConvertResult, error)
	Transfer(ctx context.Context, userID string, req bankop.TransferRequest) (*bankop.TransferResult, error)
	Profile(ctx context.Context, userID string) (string, error)
	SaveProfile(ctx context.Context, userID, profile string, create bool) error
	DeleteProfile(ctx context.Context, userID string) error
}

// Handler реализует HTTP-обработчики песочницы API BankOp.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	validate       *validator.Validate
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		validate:       validator.New(),
	}
}

type errorResponse struct {
	Message    any    `json:"message"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, message any) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{
		Message:    message,
		Error:      http.StatusText(status),
		StatusCode: status,
	})
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	h.fail(w, r, http.StatusInternalServerError, "Erro interno do servidor")
}

// decode разбирает и проверяет тело запроса. При ошибке ответ уже записан.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.fail(w, r, http.StatusBadRequest, err.Error())
			return false
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		h.fail(w, r, http.StatusBadRequest, msgs)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be an email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be a positive number", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of the following values: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		h.fail(w, r, http.StatusUnauthorized, "Unauthorized")
	}
	return id, ok
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, status int, acc *repository.Account) {
	token, err := h.authMiddleware.IssueToken(acc.ID)
	if err != nil {
		h.internal(w, r, "issue token error", err)
		return
	}

	render.Status(r, status)
	render.JSON(w, r, bankop.AuthResponse{
		AccessToken: token,
		User:        model.User{Name: acc.Name, Email: acc.Email},
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register регистрирует пользователя и возвращает токен доступа.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	acc, err := h.service.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			h.fail(w, r, http.StatusConflict, "E-mail já cadastrado")
			return
		}
		h.internal(w, r, "register user error", err)
		return
	}

	h.signIn(w, r, http.StatusCreated, acc)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login выполняет аутентификацию пользователя и возвращает токен доступа.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	acc, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.fail(w, r, http.StatusUnauthorized, "Credenciais inválidas")
			return
		}
		h.internal(w, r, "login user error", err)
		return
	}

	h.signIn(w, r, http.StatusOK, acc)
}

// GetWallets возвращает кошельки текущего пользователя.
func (h *Handler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	wallets, err := h.service.Wallets(r.Context(), userID)
	if err != nil {
		h.internal(w, r, "get wallets error", err)
		return
	}
	if wallets == nil {
		wallets = []model.Wallet{}
	}

	render.JSON(w, r, wallets)
}

// GetTransactions возвращает историю транзакций текущего пользователя.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	txs, err := h.service.Transactions(r.Context(), userID)
	if err != nil {
		h.internal(w, r, "get transactions error", err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}

	render.JSON(w, r, txs)
}

type convertRequest struct {
	OpCoins float64 `json:"opCoins" validate:"gt=0"`
}

// Convert конвертирует OpCoins текущего пользователя в BRL.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req convertRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.Convert(r.Context(), userID, req.OpCoins)
	if err != nil {
		h.operationError(w, r, "convert error", err)
		return
	}

	render.JSON(w, r, res)
}

type transferRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	AmountCoin string  `json:"amountCoin" validate:"required,oneof=OPCOIN BRL"`
	Amount     float64 `json:"amount" validate:"gt=0"`
}

// Transfer переводит средства текущего пользователя другому пользователю.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.service.Transfer(r.Context(), userID, bankop.TransferRequest{
		Email:      req.Email,
		AmountCoin: req.AmountCoin,
		Amount:     req.Amount,
	})
	if err != nil {
		h.operationError(w, r, "transfer error", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, res)
}

// operationError отображает ошибки конвертации и перевода в коды ответа.
func (h *Handler) operationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrInsufficientBalance):
		h.fail(w, r, http.StatusBadRequest, "Saldo insuficiente")
	case errors.Is(err, repository.ErrRecipientNotFound):
		h.fail(w, r, http.StatusNotFound, "Usuário destinatário não encontrado")
	case errors.Is(err, repository.ErrSelfTransfer):
		h.fail(w, r, http.StatusBadRequest, "Não é possível transferir para si mesmo")
	case errors.Is(err, service.ErrInvalidAmount):
		h.fail(w, r, http.StatusBadRequest, "Quantidade inválida")
	case errors.Is(err, service.ErrUnknownCoin):
		h.fail(w, r, http.StatusBadRequest, "Moeda inválida")
	default:
		h.internal(w, r, op, err)
	}
}

type profileRequest struct {
	Profile string `json:"profile" validate:"required,oneof=conservador moderado arrojado"`
}

type profileResponse struct {
	Profile string `json:"profile"`
}

// GetProfile возвращает профиль инвестора текущего пользователя.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.profileError(w, r, "get profile error", err)
		return
	}

	render.JSON(w, r, profileResponse{Profile: profile})
}

// CreateProfile задаёт профиль инвестора.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	h.saveProfile(w, r, true)
}

// UpdateProfile заменяет профиль инвестора.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.saveProfile(w, r, false)
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request, create bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.SaveProfile(r.Context(), userID, req.Profile, create); err != nil {
		h.profileError(w, r, "save profile error", err)
		return
	}

	if create {
		render.Status(r, http.StatusCreated)
	}
	render.JSON(w, r, profileResponse{Profile: req.Profile})
}

// DeleteProfile удаляет профиль инвестора.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteProfile(r.Context(), userID); err != nil {
		h.profileError(w, r, "delete profile error", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) profileError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrProfileNotFound):
		h.fail(w, r, http.StatusNotFound, "Perfil não encontrado")
	case errors.Is(err, repository.ErrProfileExists):
		h.fail(w, r, http.StatusConflict, "Perfil já cadastrado")
	case errors.Is(err, repository.ErrUserNotFound):
		h.fail(w, r, http.StatusNotFound, "Usuário não encontrado")
	case errors.Is(err, service.ErrUnknownProfile):
		h.fail(w, r, http.StatusBadRequest, "Perfil inválido")
	default:
		h.internal(w, r, op, err)
	}
}
