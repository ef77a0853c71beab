package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-tx-propagation/internal/api"
	"github.com/sanosuguru/go-tx-propagation/internal/api/handler"
	custommw "github.com/sanosuguru/go-tx-propagation/internal/api/middleware"
	"github.com/sanosuguru/go-tx-propagation/internal/application"
	"github.com/sanosuguru/go-tx-propagation/internal/config"
	"github.com/sanosuguru/go-tx-propagation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-tx-propagation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-tx-propagation/internal/pkg/logger"
	"github.com/sanosuguru/go-tx-propagation/internal/pkg/metrics"
	"github.com/sanosuguru/go-tx-propagation/internal/txn"
	"github.com/sanosuguru/go-tx-propagation/internal/worker"
)

func main() {
	// 設定読み込み
	cfg := config.Load()

	// ロガー初期化
	log := logger.Get()
	defer func() { _ = logger.Sync() }()

	// メトリクス初期化
	m := metrics.Init()

	// 既定の伝播モード名を起動時に検証する
	if _, err := txn.ParsePropagation(cfg.Tx.DefaultPropagation); err != nil {
		log.Fatal("TX_DEFAULT_PROPAGATIONが不正です",
			zap.String("value", cfg.Tx.DefaultPropagation), zap.Error(err))
	}

	// データベース接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatal("データベース接続に失敗しました", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		log.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	// Redis接続（任意。落ちていても登録ロックなしで起動する）
	var signupLock *redisinfra.RegistrationLock
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisinfra.Ping(ctx, redisClient); err != nil {
			log.Warn("Redisに接続できないため登録ロックを無効化します", zap.Error(err))
		} else {
			signupLock = redisinfra.NewRegistrationLock(redisClient)
		}
		cancel()
	}

	// トランザクションコーディネーター
	provider := postgres.NewHandleProvider(db)
	coordinator := txn.NewCoordinator(provider, m)

	// リポジトリ
	memberRepo := postgres.NewMemberRepository(db)
	logRepo := postgres.NewActivityLogRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	// サービス
	memberService := application.NewMemberService(
		coordinator, memberRepo, logRepo, signupLock, cfg.Tx.SignupLockTTL, m)
	orderService := application.NewOrderService(coordinator, orderRepo)
	retentionService := application.NewLogRetentionService(coordinator, logRepo)

	// 監査ログクリーナー起動
	cleaner := worker.NewLogRetentionCleaner(
		retentionService, cfg.Tx.LogCleanupInterval, cfg.Tx.LogRetention)
	cleanerCtx, cleanerCancel := context.WithCancel(context.Background())
	go cleaner.Start(cleanerCtx)

	// Echo設定
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ハンドラー
	memberHandler := handler.NewMemberHandler(memberService)
	orderHandler := handler.NewOrderHandler(orderService)
	healthHandler := handler.NewHealthHandler(
		handler.PingFunc(func(ctx context.Context) error { return postgres.Ping(ctx, db) }),
		handler.PingFunc(func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) }),
	)

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.POST("/members", memberHandler.Join)
	v1.GET("/members/:username", memberHandler.GetByUsername)
	v1.POST("/orders", orderHandler.Place)
	v1.GET("/orders/:id", orderHandler.GetByID)
	v1.GET("/health", healthHandler.Check)

	// メトリクスエンドポイント（Basic認証）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	log.Info("サーバー起動完了",
		zap.String("port", cfg.Server.Port),
		zap.String("default_propagation", cfg.Tx.DefaultPropagation),
	)

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("サーバーをシャットダウンしています...")

	// クリーナー停止
	cleanerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	log.Info("サーバーが正常にシャットダウンしました")
}
