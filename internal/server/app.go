// Package server wires the TuneKeeper server together: logging, the
// Postgres connection and migrations, the auth and library services and the
// gRPC endpoint, plus graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tunekeeper/internal/logging"
	"github.com/dmitrijs2005/tunekeeper/internal/server/auth"
	"github.com/dmitrijs2005/tunekeeper/internal/server/config"
	"github.com/dmitrijs2005/tunekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tunekeeper/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/tunekeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	auth     *services.AuthService
	resolver *services.IdentityResolver
	library  *services.LibraryService
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	return newApp(c, logger, db, rm), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	if c.UsesDefaultSecret() {
		logger.Warn(context.Background(), "token secret is the built-in development default; set -s or secret_key before exposing this server")
	}

	hasher := auth.NewPasswordHasher(c.PasswordHashCost, c.PasswordHashWorkers)
	codec := auth.NewTokenCodec([]byte(c.SecretKey), nil)
	issuer := auth.NewSessionIssuer(codec, c.SessionTTL, c.RefreshTTL)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		auth:     services.NewAuthService(db, rm, hasher, codec, issuer, logger),
		resolver: services.NewIdentityResolver(db, rm, codec, logger),
		library:  services.NewLibraryService(db, rm, logger),
	}
}

// Run serves gRPC until ctx is cancelled or a termination signal arrives,
// then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.auth, app.resolver, app.library)
	err := s.Run(ctx)
	if err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
	}

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close error", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
