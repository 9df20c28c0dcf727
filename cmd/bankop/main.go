// Package main запускает клиент BankOp для командной строки.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mmeshcher/bankop-client/internal/bankop"
	"github.com/mmeshcher/bankop-client/internal/config"
	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/notify"
	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/storage"
	"github.com/mmeshcher/bankop-client/internal/store"
	"github.com/mmeshcher/bankop-client/internal/view"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, args, err := config.ParseClient("bankop", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	logger, _ := logCfg.Build()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error("storage initialization error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeStorage()

	sessions := session.NewStore(kv)
	nav := &navigator{}
	deps := view.Deps{
		API: bankop.NewClient(cfg.APIURL,
			bankop.WithTimeout(cfg.RequestTimeout),
			bankop.WithLogger(logger),
		),
		Sessions: sessions,
		Gate:     session.NewGate(sessions),
		Relay:    notify.NewRelay(kv),
		Toaster:  notify.NewToaster(notify.WithOnShow(printToast(os.Stdout))),
		Store:    store.New(),
		Logger:   logger,
		Debounce: cfg.Debounce,
	}

	if err := newApp(deps, nav, os.Stdout).run(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if !reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

// reported сообщает, была ли ошибка уже показана пользователю уведомлением или ошибками полей.
func reported(err error) bool {
	var apiErr *bankop.APIError
	var verr *form.ValidationError
	return errors.As(err, &apiErr) || errors.As(err, &verr)
}

func openStorage(ctx context.Context, cfg *config.Client) (storage.Storage, func(), error) {
	if cfg.Storage == config.StorageRedis {
		r, err := storage.NewRedis(ctx, cfg.RedisAddr, "bankop:")
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	}

	path := cfg.StoragePath
	if path == "" {
		path = storage.DefaultPath()
	}
	f, err := storage.NewFile(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {}, nil
}
