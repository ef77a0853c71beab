package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-tx-propagation/internal/api"
	"github.com/sanosuguru/go-tx-propagation/internal/api/handler"
	"github.com/sanosuguru/go-tx-propagation/internal/api/middleware"
	"github.com/sanosuguru/go-tx-propagation/internal/application"
	"github.com/sanosuguru/go-tx-propagation/internal/config"
	"github.com/sanosuguru/go-tx-propagation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-tx-propagation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-tx-propagation/internal/txn"
)

var (
	testServer  *TestServer
	testDB      *sqlx.DB
	redisClient *redis.Client
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo *echo.Echo
}

// Request はHTTPリクエストを実行
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// TestMain はE2Eテストのエントリポイント
// パッケージ全体で1回だけサーバーを組み立てることで高速化
func TestMain(m *testing.M) {
	cfg := config.Load()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		os.Exit(0) // DB未起動時はスキップ
	}
	testDB = db

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "../migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		db.Close()
		os.Exit(0)
	}

	// Redis接続（任意）
	var signupLock *redisinfra.RegistrationLock
	rc := redisinfra.NewClient(&cfg.Redis)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisinfra.Ping(ctx, rc); err == nil {
			redisClient = rc
			signupLock = redisinfra.NewRegistrationLock(rc)
		}
		cancel()
	}

	// コーディネーターとサービス初期化
	provider := postgres.NewHandleProvider(db)
	coordinator := txn.NewCoordinator(provider, nil)

	memberRepo := postgres.NewMemberRepository(db)
	logRepo := postgres.NewActivityLogRepository(db)
	orderRepo := postgres.NewOrderRepository(db)

	memberService := application.NewMemberService(
		coordinator, memberRepo, logRepo, signupLock, cfg.Tx.SignupLockTTL, nil)
	orderService := application.NewOrderService(coordinator, orderRepo)

	memberHandler := handler.NewMemberHandler(memberService)
	orderHandler := handler.NewOrderHandler(orderService)

	// Echo セットアップ
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	v1 := e.Group("/api/v1")
	v1.POST("/members", memberHandler.Join)
	v1.GET("/members/:username", memberHandler.GetByUsername)
	v1.POST("/orders", orderHandler.Place)
	v1.GET("/orders/:id", orderHandler.GetByID)

	testServer = &TestServer{Echo: e}

	// テスト実行
	code := m.Run()

	// 最終クリーンアップ
	cleanupTables()
	if redisClient != nil {
		redisClient.Close()
	}
	db.Close()

	os.Exit(code)
}

// cleanupTables はテーブルをクリーンアップ
func cleanupTables() {
	testDB.Exec("TRUNCATE TABLE activity_logs, orders, members CASCADE")
}

// getTestServer は共有サーバーを取得（テスト前にテーブルをクリーンアップ）
func getTestServer(t *testing.T) *TestServer {
	t.Helper()
	if testServer == nil {
		t.Skip("テスト環境が利用できません")
	}
	cleanupTables()
	return testServer
}
