// Package server wires configuration, storage, mail and services together
// and runs the gRPC endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
	"github.com/dmitrijs2005/medmind-auth/internal/server/mailer"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medmind-auth/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/medmind-auth/internal/server/grpc"
)

// MemoryDSN selects the in-process store instead of PostgreSQL.
const MemoryDSN = "memory"

const (
	productName   = "MedMind"
	purgeInterval = time.Hour
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	tokens         *services.EmailTokenStore
	authService    *services.AuthService
	accountService *services.AccountService
}

// Storage is an opened account store.
type Storage struct {
	DB      *sql.DB
	Tx      dbx.Transactor
	Repos   repomanager.RepositoryManager
	Backend string
}

// Close releases the database handle, if any.
func (s *Storage) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// OpenStorage connects to the configured store and applies migrations.
func OpenStorage(ctx context.Context, dsn string) (*Storage, error) {
	if strings.TrimSpace(dsn) == MemoryDSN {
		store := memory.NewStore(nil)
		return &Storage{Tx: store, Repos: repomanager.NewMemoryRepositoryManager(store), Backend: "memory"}, nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tx := dbx.NewSQLTransactor(db, &sql.TxOptions{Isolation: sql.LevelSerializable})
	return &Storage{DB: db, Tx: tx, Repos: rm, Backend: "postgres"}, nil
}

// NewMailer builds the outgoing mail pipeline from configuration.
func NewMailer(ctx context.Context, c *config.Config, logger logging.Logger) (*mailer.Dispatcher, error) {
	transport, err := mailer.NewTransport(ctx, c.Mail.Driver, mailer.SESConfig{
		From:            c.Mail.From,
		FromName:        c.Mail.FromName,
		Region:          c.Mail.Region,
		AccessKeyID:     c.Mail.AccessKeyID,
		SecretAccessKey: c.Mail.SecretAccessKey,
		BaseEndpoint:    c.Mail.BaseEndpoint,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	composer := mailer.NewComposer(productName, c.BaseURL, c.VerificationTokenTTL, c.ResetTokenTTL)
	return mailer.NewDispatcher(composer, transport), nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	if c.UsingDefaultSecret() {
		logger.Warn(ctx, "signing secret is the development default, set JWT_SECRET", "insecure_default", true)
	}

	st, err := OpenStorage(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "storage ready", "backend", st.Backend)

	hasher := auth.NewPasswordHasher(c.BcryptCost)

	if _, err := services.EnsureBootstrapAdmin(ctx, st.Tx, st.Repos, hasher, c.BootstrapAdmin, logger); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("bootstrap admin error: %w", err)
	}

	codec, err := auth.NewClaimsCodec(c.SecretKey, auth.WithTTL(c.SessionTTL))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("claims codec error: %w", err)
	}

	m, err := NewMailer(ctx, c, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	tokens := services.NewEmailTokenStore(st.Tx, st.Repos, nil, logger)

	return &App{
		config:         c,
		logger:         logger,
		db:             st.DB,
		tokens:         tokens,
		authService:    services.NewAuthService(st.Tx, st.Repos, hasher, codec, tokens, m, c, logger),
		accountService: services.NewAccountService(st.Tx, st.Repos, hasher, c, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.accountService)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// purgeExpiredTokens removes expired email tokens every interval until ctx ends.
func (app *App) purgeExpiredTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.tokens.PurgeExpired(ctx); err != nil {
				app.logger.Warn(ctx, "purge of expired email tokens failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeExpiredTokens(ctx, purgeInterval)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}
	app.logger.Info(ctx, "App stopped")
}
