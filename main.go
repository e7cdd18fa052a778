package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/pmscockpit/config"
	"github.com/epeers/pmscockpit/docs"
	"github.com/epeers/pmscockpit/internal/alphavantage"
	"github.com/epeers/pmscockpit/internal/cache"
	"github.com/epeers/pmscockpit/internal/handlers"
	"github.com/epeers/pmscockpit/internal/middleware"
	"github.com/epeers/pmscockpit/internal/models"
	"github.com/epeers/pmscockpit/internal/repository"
	"github.com/epeers/pmscockpit/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pmscockpit",
		Short:         "Portfolio operations cockpit: cash ladder, reconciliation, rebalance and NAV bridge",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newReconcileCmd(), newVersionCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
	return cfg, nil
}

func deskRates(cfg *config.Config) models.FXRates {
	rates := make(models.FXRates, len(cfg.FXRates))
	for ccy, r := range cfg.FXRates {
		rates[models.Currency(ccy)] = r
	}
	return rates
}

func rebalanceDefaults(cfg *config.Config) models.RebalanceConfig {
	return models.RebalanceConfig{
		Mode:            models.ModeEverything,
		Horizon:         models.Horizon(cfg.RebalanceHorizon),
		TargetCashPct:   cfg.RebalanceTargetCashPct,
		AutoFX:          cfg.RebalanceAutoFX,
		FXExecutionType: models.FXExecutionType(cfg.FXExecution),
	}
}

func tolerance(cfg *config.Config) models.BreakTolerance {
	return models.BreakTolerance{
		AbsoluteUSD: cfg.BreakToleranceAbsUSD,
		RelativeBps: cfg.BreakToleranceRelBps,
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	// Live FX is optional
	var avClient *alphavantage.Client
	if cfg.AVKey != "" {
		avClient = alphavantage.NewClient(cfg.AVKey)
	} else {
		log.Info("AV_KEY not set, serving desk FX rates")
	}

	// Initialize caches
	fxCache := cache.NewMemoryCache(cfg.FXCacheTTL)

	// Initialize repositories
	reconRepo := repository.NewReconciliationRepository()

	// Initialize services
	fxSvc := services.NewFXRateService(fxCache, avClient, deskRates(cfg))
	reconSvc := services.NewReconciliationService(reconRepo, tolerance(cfg))
	rebalanceSvc := services.NewRebalanceService(fxSvc, rebalanceDefaults(cfg))
	cockpitSvc := services.NewCockpitService(fxSvc, rebalanceDefaults(cfg), tolerance(cfg))

	// Initialize handlers
	cashHandler := handlers.NewCashHandler()
	reconHandler := handlers.NewReconciliationHandler(reconSvc)
	rebalanceHandler := handlers.NewRebalanceHandler(rebalanceSvc)
	cockpitHandler := handlers.NewCockpitHandler(cockpitSvc, fxSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.IdentifyOperator())
	router.Use(middleware.RequestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	})

	docs.SwaggerInfo.Version = version
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/fx/rates", cockpitHandler.FXRates)

	router.POST("/cash/ladder", cashHandler.Ladder)
	router.POST("/cash/projection", cashHandler.Projection)
	router.POST("/cash/investable", cashHandler.Investable)
	router.POST("/cash/spot-to-base", cashHandler.SpotToBase)

	router.POST("/portfolio/derive", cockpitHandler.Derive)
	router.POST("/nav/shadow-card", cockpitHandler.ShadowCard)
	router.POST("/cockpit", cockpitHandler.Dashboard)

	router.POST("/reconciliations", reconHandler.Create)
	router.POST("/reconciliations/upload", reconHandler.Upload)
	router.GET("/reconciliations/:id", reconHandler.Get)
	router.GET("/reconciliations/:id/audit", reconHandler.Audit)
	router.POST("/reconciliations/:id/push", reconHandler.PushToBook)

	breaks := router.Group("/reconciliations/:id/breaks/:breakId")
	breaks.PUT("/owner", reconHandler.AssignOwner)
	breaks.PUT("/status", reconHandler.UpdateStatus)
	breaks.PUT("/resolution", reconHandler.Resolve)
	breaks.PUT("/notes", reconHandler.UpdateNotes)
	breaks.PUT("/cause", middleware.RequireOperator(), reconHandler.OverrideCause)

	router.POST("/rebalance", rebalanceHandler.Preview)
	router.POST("/rebalance/baskets", rebalanceHandler.BuildBaskets)
	router.POST("/baskets/route", rebalanceHandler.Route)
	router.POST("/baskets/cancel", rebalanceHandler.Cancel)
	router.POST("/baskets/do-not-trade", rebalanceHandler.DoNotTrade)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}

// offlineReport is what `reconcile` prints
type offlineReport struct {
	Reconciliation *models.NAVReconciliation `json:"reconciliation"`
	ShadowNAV      models.ShadowNAVCard      `json:"shadow_nav"`
	Warnings       []models.Warning          `json:"warnings,omitempty"`
}

func newReconcileCmd() *cobra.Command {
	var snapshotPath string
	var pretty bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a snapshot file offline and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(snapshotPath)
			if err != nil {
				return fmt.Errorf("failed to read snapshot: %w", err)
			}
			var snap models.CockpitSnapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return fmt.Errorf("failed to parse snapshot %s: %w", snapshotPath, err)
			}

			rates := snap.FXRates
			if len(rates) == 0 {
				rates = deskRates(cfg)
			}
			tol := tolerance(cfg)
			if snap.Tolerance != nil {
				tol = *snap.Tolerance
			}

			ctx, wc := services.NewWarningContext(cmd.Context())
			services.SnapshotWarnings(ctx, snap.Portfolio, rates)
			recon := services.Reconcile(ctx, snap.Portfolio, snap.Custodian, rates, tol)
			recon.LastReconciledAt = time.Now().UTC().Format(time.RFC3339)

			report := offlineReport{
				Reconciliation: recon,
				ShadowNAV:      services.ShadowNAV(ctx, snap.Portfolio, snap.Custodian, rates),
				Warnings:       wc.GetWarnings(),
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "path to a cockpit snapshot JSON file")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
