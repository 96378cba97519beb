package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apphttp "marketplace-admin/internal/http"
	"marketplace-admin/internal/config"
	"marketplace-admin/internal/logging"
	"marketplace-admin/internal/repository/sqlite"
	"marketplace-admin/internal/service"
	"marketplace-admin/internal/token"
)

func main() {
	configFile := flag.String("config", "", "config file (default: ./config.yaml or ~/.adminctl/config.yaml)")
	flag.Parse()

	logger, _ := logging.New("info", "text", os.Stderr)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if logger, err = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}

	sb := cfg.Sandbox
	if strings.TrimSpace(sb.JWTSecret) == "" {
		logger.Fatalf("sandbox jwt secret is required")
	}
	if strings.TrimSpace(sb.AdminPassword) == "" {
		logger.Fatalf("sandbox admin password is required")
	}

	// amounts go out as JSON numbers like the real backend sends them
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(sb.DatabasePath)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	adminRepo := sqlite.NewAdminRepository(db)
	docRepo := sqlite.NewDocumentRepository(db)
	if err := adminRepo.Init(ctx); err != nil {
		logger.Fatalf("init admin repository: %v", err)
	}
	if err := docRepo.Init(ctx); err != nil {
		logger.Fatalf("init document repository: %v", err)
	}

	issuer := token.NewIssuer(sb.JWTSecret, sb.AccessTTL, sb.RefreshTTL)
	authService := service.NewAuthService(adminRepo, issuer)
	catalog := service.NewCatalog(docRepo)

	admin, err := service.Bootstrap(ctx, authService, catalog, sb.AdminEmail, sb.AdminPassword, sb.AdminName, sb.Seed)
	if err != nil {
		logger.Fatalf("bootstrap: %v", err)
	}
	logger.Infof("operator account %s ready", admin.Email)

	uploadDir := filepath.Join(filepath.Dir(sb.DatabasePath), "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.Fatalf("create upload dir: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(authService, catalog, uploadDir, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    sb.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", sb.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
