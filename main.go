package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"HRM-backend/docs"
	"HRM-backend/internal/attendance"
	"HRM-backend/internal/employee"
	"HRM-backend/internal/platform/auth"
	"HRM-backend/internal/platform/config"
	"HRM-backend/internal/platform/db"
	"HRM-backend/internal/platform/idempotency"
	"HRM-backend/internal/platform/logger"
	"HRM-backend/internal/platform/metrics"
	"HRM-backend/internal/platform/middleware"
)

// @title                      HRM attendance API
// @version                    2.0
// @BasePath                   /api/v2
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	// 設定読み込み
	cfgPath := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.Logger, cfg.Mode)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	log.Info("starting", zap.String("mode", cfg.Mode), zap.String("version", cfg.Version))

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer conn.Close()
	log.Info("connected to DB", zap.String("dbname", cfg.DB.DBName))

	// Redis は任意。未設定なら Idempotency-Key は無視する
	var idem *idempotency.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unreachable; idempotency replay runs fail-open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		idem = idempotency.New(rdb, cfg.Attendance.IdempotencyTTL, log.Named("idempotency"))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTP(reg)

	// サービス組み立て
	employees, err := employee.NewService(employee.NewStore(conn), cfg.Attendance.DefaultTimeZone)
	if err != nil {
		log.Fatal("employee service", zap.Error(err))
	}
	attendanceSvc := attendance.NewService(
		attendance.NewStore(conn),
		employees,
		log,
		attendance.NewMetrics(reg),
		cfg.Attendance.HistoryLimit,
	)

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(log), middleware.Metrics(httpMetrics), middleware.Recovery(log))
	_ = r.SetTrustedProxies(nil)

	if cfg.IsDevelopment() {
		// CORS（開発中のみ必要）
		origins := cfg.Server.CORSOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", idempotency.HeaderKey, middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", idempotency.HeaderReplayed, middleware.HeaderRequestID},
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス・メトリクス・API ドキュメント
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	docs.SwaggerInfo.BasePath = "/api/v2"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// /api/v2
	api := r.Group("/api/v2", auth.RequireAuth([]byte(cfg.Auth.JWTSecret)))
	hr := api.Group("", auth.RequireRole("admin", "hr"))

	attendance.RegisterRoutes(api, attendanceSvc, idem.Middleware(auth.EmployeeID))
	attendance.RegisterHRRoutes(hr, attendanceSvc)
	employee.RegisterRoutes(api, hr, employees)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		var err error
		if cfg.Server.TLS {
			// TLS設定（dev / release で証明書ディレクトリを分ける）
			dir := filepath.Join("config", "tls", cfg.Mode)
			certFile := filepath.Join(dir, cfg.Certificate.Cert)
			keyFile := filepath.Join(dir, cfg.Certificate.Key)
			log.Info("listening", zap.String("addr", "https://"+cfg.Server.Addr))
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Info("listening", zap.String("addr", "http://"+cfg.Server.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
