// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/tokenstore/internal/config"
	"github.com/allisson/tokenstore/internal/database"
	"github.com/allisson/tokenstore/internal/http"
	"github.com/allisson/tokenstore/internal/metrics"
	tokenRepository "github.com/allisson/tokenstore/internal/token/repository"
	tokenMySQL "github.com/allisson/tokenstore/internal/token/repository/mysql"
	tokenService "github.com/allisson/tokenstore/internal/token/service"
	tokenUseCase "github.com/allisson/tokenstore/internal/token/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Services
	keyDeriver tokenService.KeyDeriver

	// Repositories
	tokenRepo tokenUseCase.TokenRepository

	// Use Cases
	tokenStore tokenUseCase.TokenStore

	// Servers and Workers
	opsServer   *http.Server
	purgeWorker *tokenUseCase.PurgeWorker

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	keyDeriverInit      sync.Once
	tokenRepoInit       sync.Once
	tokenStoreInit      sync.Once
	opsServerInit       sync.Once
	purgeWorkerInit     sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider.
// Returns nil without error when metrics are disabled in configuration.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// Returns a no-op recorder when metrics are disabled in configuration.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// KeyDeriver returns the storage key deriver.
func (c *Container) KeyDeriver() tokenService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = c.initKeyDeriver()
	})
	return c.keyDeriver
}

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (tokenUseCase.TokenRepository, error) {
	var err error
	c.tokenRepoInit.Do(func() {
		c.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepository"]; exists {
		return nil, storedErr
	}
	return c.tokenRepo, nil
}

// TokenStore returns the token store use case.
func (c *Container) TokenStore() (tokenUseCase.TokenStore, error) {
	var err error
	c.tokenStoreInit.Do(func() {
		c.tokenStore, err = c.initTokenStore()
		if err != nil {
			c.initErrors["tokenStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenStore"]; exists {
		return nil, storedErr
	}
	return c.tokenStore, nil
}

// PurgeWorker returns the background purge worker.
func (c *Container) PurgeWorker() (*tokenUseCase.PurgeWorker, error) {
	var err error
	c.purgeWorkerInit.Do(func() {
		c.purgeWorker, err = c.initPurgeWorker()
		if err != nil {
			c.initErrors["purgeWorker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["purgeWorker"]; exists {
		return nil, storedErr
	}
	return c.purgeWorker, nil
}

// OpsServer returns the operational HTTP server.
func (c *Container) OpsServer() (*http.Server, error) {
	var err error
	c.opsServerInit.Do(func() {
		c.opsServer, err = c.initOpsServer()
		if err != nil {
			c.initErrors["opsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["opsServer"]; exists {
		return nil, storedErr
	}
	return c.opsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown ops server if initialized
	if c.opsServer != nil {
		if err := c.opsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("ops server shutdown: %w", err))
		}
	}

	// Flush the meter provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return businessMetrics, nil
}

// initKeyDeriver creates the storage key deriver with the default legacy detector.
func (c *Container) initKeyDeriver() tokenService.KeyDeriver {
	return tokenService.NewKeyDeriver(nil)
}

// initTokenRepository creates the token repository based on the database driver.
func (c *Container) initTokenRepository() (tokenUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return tokenMySQL.NewMySQLTokenRepository(db), nil
	case "postgres":
		return tokenRepository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenStore creates the token store use case with all its dependencies.
func (c *Container) initTokenStore() (tokenUseCase.TokenStore, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for token store: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token store: %w", err)
	}

	keyDeriver := c.KeyDeriver()

	baseStore := tokenUseCase.NewTokenStore(c.config, txManager, tokenRepo, keyDeriver)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token store: %w", err)
		}
		return tokenUseCase.NewTokenStoreWithMetrics(baseStore, businessMetrics), nil
	}

	return baseStore, nil
}

// initPurgeWorker creates the background purge worker.
func (c *Container) initPurgeWorker() (*tokenUseCase.PurgeWorker, error) {
	tokenStore, err := c.TokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get token store for purge worker: %w", err)
	}

	return tokenUseCase.NewPurgeWorker(c.config.PurgeInterval, tokenStore, c.Logger()), nil
}

// initOpsServer creates the operational HTTP server with all its dependencies.
func (c *Container) initOpsServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ops server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for ops server: %w", err)
	}

	logger := c.Logger()

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(c.config, metricsProvider)

	return server, nil
}
