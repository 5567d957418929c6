package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/clearance-management/internal"
	"github.com/frahmantamala/clearance-management/internal/auth"
	"github.com/frahmantamala/clearance-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/clearance-management/internal/dashboard/postgres"
	"github.com/frahmantamala/clearance-management/internal/request"
	requestPostgres "github.com/frahmantamala/clearance-management/internal/request/postgres"
	"github.com/frahmantamala/clearance-management/internal/storage"
	"github.com/frahmantamala/clearance-management/internal/transport/rest"
	"github.com/frahmantamala/clearance-management/internal/user"
	userPostgres "github.com/frahmantamala/clearance-management/internal/user/postgres"
	"github.com/frahmantamala/clearance-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies is the explicit wiring of the process: one database handle
// created at startup, torn down at shutdown, passed to every component. No
// ambient globals.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm over connection: %w", err)
	}

	documentStore, err := storage.NewDocumentStore(config.Uploads.Dir, config.Uploads.MaxFileBytes, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}

	userRepo := userPostgres.NewUserRepository(gormDB)
	requestRepo := requestPostgres.NewRequestRepository(gormDB)
	statsRepo := dashboardPostgres.NewStatsRepository(gormDB)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenTTL)
	authService := auth.NewService(userRepo, tokenGen, config.Security.BCryptCost, lg)
	userService := user.NewService(userRepo, lg)
	requestService := request.NewService(requestRepo, documentStore, config.Uploads.MaxFiles, lg)
	dashboardService := dashboard.NewService(statsRepo, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.RouterDeps{
		DB:               db.DB,
		AuthHandler:      auth.NewHandler(authService),
		UserHandler:      user.NewHandler(userService),
		RequestHandler:   request.NewHandler(requestService),
		DashboardHandler: dashboard.NewHandler(dashboardService),
		UploadsDir:       documentStore.Dir(),
		AllowedOrigins:   config.Server.AllowedOrigins,
		Logger:           lg,
	})

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
