package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "fund-ledger/internal/adapter/http"
	"fund-ledger/internal/adapter/middleware"
	"fund-ledger/internal/adapter/repository/mysql"
	"fund-ledger/internal/config"
	"fund-ledger/internal/domain/fundplan"
	domainNotify "fund-ledger/internal/domain/notify"
	"fund-ledger/internal/domain/uow"
	"fund-ledger/internal/infrastructure/cache"
	"fund-ledger/internal/infrastructure/db"
	"fund-ledger/internal/infrastructure/lock"
	"fund-ledger/internal/infrastructure/logger"
	"fund-ledger/internal/infrastructure/metrics"
	"fund-ledger/internal/infrastructure/notify"
	"fund-ledger/internal/usecase/emitter"
	"fund-ledger/internal/usecase/investment"
	"fund-ledger/internal/usecase/reconcile"
	"fund-ledger/internal/usecase/wallet"
	"fund-ledger/internal/usecase/withdrawal"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.Fatal("mysql unavailable", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			log.Fatal("auto migrate failed", zap.Error(err))
		}
		log.Info("schema migrated")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("mysql pool", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()
	checks := map[string]httpadp.Check{"mysql": sqlDB.PingContext}

	var (
		locker   uow.WalletLocker
		plans    fundplan.Repository = mysql.NewFundPlanRepository(gdb)
		notifier domainNotify.Notifier
		mailer   domainNotify.Mailer = notify.NopMailer{}
		idem     echo.MiddlewareFunc
	)
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, lock.Options{
			Timeout: cfg.WalletLockTimeout,
			Expiry:  cfg.WalletLockExpiry,
		}, log)
		plans = cache.NewFundPlans(plans, rdb, cfg.FundPlanCacheTTL, log)
		notifier = notify.NewRedisNotifier(rdb, cfg.NotifyChannel)
		idem = middleware.IdempotencyMiddleware(rdb, cfg.IdempotencyTTL(), log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn("REDIS_ADDR not set: in-process wallet locks, no idempotency keys, no notifications")
		locker = lock.NewLocalLocker(cfg.WalletLockTimeout)
	}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}

	tx := mysql.NewGormUoW(gdb)
	events := emitter.New(mysql.NewAuditRepository(gdb), notifier, mailer, cfg.OpsEmail, log)
	ledgerMetrics := metrics.NewLedger()
	wallets := wallet.NewManager(tx, locker, events, log, wallet.WithRecorder(ledgerMetrics))
	investments := investment.NewUsecase(wallets, tx, plans, events, log)
	withdrawals := withdrawal.NewUsecase(wallets, tx, events, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.RequestID(), middleware.RequestLogger(log), echomw.Recover())

	httpadp.Router{
		Health:      httpadp.NewHandler(checks),
		Wallets:     httpadp.NewWalletHandler(wallets, investments, withdrawals, log),
		Investments: httpadp.NewInvestmentHandler(investments, log),
		Withdrawals: httpadp.NewWithdrawalHandler(withdrawals, log),
		Admin:       httpadp.NewAdminHandler(reconcile.NewUsecase(tx, events), log),
		Idempotency: idem,
	}.Register(e)
	e.GET("/metrics", echo.WrapHandler(ledgerMetrics.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("stopped")
}
