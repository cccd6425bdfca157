package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/pfopt/internal/api"
	"github.com/wonny/pfopt/internal/api/handlers"
	"github.com/wonny/pfopt/internal/scheduler"
	"github.com/wonny/pfopt/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 시뮬레이션 실행 및 저장된 run 조회
- 국가 테이블 월간 갱신 (--refresh)

Endpoints:
  GET  /health                  - Health check
  GET  /api/countries           - 국가 테이블
  GET  /api/countries/{country} - 국가 조회
  POST /api/simulations         - 시뮬레이션 실행 → 추천
  GET  /api/simulations         - 최근 run 목록
  GET  /api/simulations/{id}    - 저장된 run 조회
  GET  /ws/simulations          - WebSocket 진행률 스트리밍

Example:
  go run ./cmd/pfopt api
  go run ./cmd/pfopt api --port 8080 --refresh`,
	RunE: runAPIServer,
}

var (
	apiPort    string
	apiRefresh bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiRefresh, "refresh", false, "국가 테이블 갱신 작업을 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== pfopt API Server ===")

	// 1. Load config
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 2. Backends + advisor
	d, err := newDeps(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	// 3. Rate limiter (Redis 비활성 시 통과)
	var limiter *redis.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = redis.NewRateLimiter(d.redis, cachePrefix, cfg.RateLimit, time.Minute)
	}

	// 4. Router + server
	var health api.HealthChecker
	if d.db != nil {
		health = d.db
	}
	router := api.NewRouter(
		handlers.NewSimulationHandler(d.advisor, log),
		handlers.NewCountryHandler(d.market, log),
		limiter,
		health,
		log,
	)
	server := api.New(cfg, log, router)

	// 5. Optional refresh scheduler
	var sched *scheduler.Scheduler
	if apiRefresh {
		sched = scheduler.New(log)
		if err := sched.AddJob(d.newRefreshJob()); err != nil {
			return err
		}
		sched.Start()
	}

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Infof("API server listening on %s", server.Addr())
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if sched != nil {
			sched.Stop()
		}
		return err
	}

	log.Info("Shutting down server...")
	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
