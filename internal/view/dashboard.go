package view

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/store"
)

// Dashboard реализует панель пользователя с балансами и историей транзакций.
type Dashboard struct {
	deps Deps

	mu      sync.Mutex
	loading bool
	wallets []model.Wallet
}

// NewDashboard создаёт панель.
func NewDashboard(deps Deps) *Dashboard {
	return &Dashboard{deps: deps}
}

// Mount открывает панель: без сессии выполняется переход на страницу входа,
// иначе загружаются кошельки и транзакции и показывается отложенное уведомление.
func (v *Dashboard) Mount(ctx context.Context) (session.Decision, error) {
	dec, err := v.deps.mount(ctx, v.deps.Gate.Protected)
	if err != nil || !dec.Render() {
		return dec, err
	}

	v.deps.drainNotification(ctx)

	if err := v.Refresh(ctx); err != nil {
		return dec, err
	}
	return dec, nil
}

// Refresh параллельно загружает кошельки и транзакции и ждёт завершения обоих запросов.
// Ошибка каждого запроса показывается отдельным уведомлением.
func (v *Dashboard) Refresh(ctx context.Context) error {
	token, err := v.deps.token(ctx)
	if err != nil {
		return err
	}

	v.setLoading(true)
	defer v.setLoading(false)

	var g errgroup.Group
	g.Go(func() error {
		v.loadWallets(ctx, token)
		return nil
	})
	g.Go(func() error {
		v.loadTransactions(ctx, token)
		return nil
	})
	return g.Wait()
}

func (v *Dashboard) loadWallets(ctx context.Context, token string) {
	wallets, err := v.deps.API.Wallets(ctx, token)
	if err != nil {
		v.deps.fail(titleError, err, "Falha ao carregar os saldos")
		return
	}

	var opCoins, brl float64
	if w, ok := model.FindWallet(wallets, model.CoinOpCoin); ok {
		opCoins = w.Balance
	}
	if w, ok := model.FindWallet(wallets, model.CoinBRL); ok {
		brl = w.Balance
	}

	v.deps.Store.Dispatch(
		store.SetOpCoinsToConvert(0),
		store.SetOpCoins(opCoins),
		store.SetBRLCoins(brl),
	)

	v.mu.Lock()
	v.wallets = wallets
	v.mu.Unlock()
}

func (v *Dashboard) loadTransactions(ctx context.Context, token string) {
	txs, err := v.deps.API.Transactions(ctx, token)
	if err != nil {
		v.deps.fail(titleError, err, "Falha ao carregar as transações")
		return
	}
	v.deps.Store.Dispatch(store.SetTransactions(txs))
}

func (v *Dashboard) setLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
}

// Loading сообщает, идёт ли загрузка данных панели.
func (v *Dashboard) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Wallets возвращает загруженные кошельки.
func (v *Dashboard) Wallets() []model.Wallet {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]model.Wallet(nil), v.wallets...)
}

// State возвращает глобальное состояние для отрисовки.
func (v *Dashboard) State() store.State {
	return v.deps.Store.State()
}
