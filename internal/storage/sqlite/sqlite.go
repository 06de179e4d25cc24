// Package sqlite opens the application database through gorm on the pure Go
// modernc driver and applies the embedded goose migrations.
package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Schemes accepted by OpenURL.
var schemes = []string{"sqlite", "sqlite3"}

// Open connects to the database file at path. The pool holds a single
// connection.
func Open(ctx context.Context, path string) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.WithContext(ctx).Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite: set busy timeout: %w", err)
	}
	return db, nil
}

// OpenURL opens a database addressed as sqlite:///path.
func OpenURL(ctx context.Context, url string) (*gorm.DB, error) {
	path, err := PathFromURL(url)
	if err != nil {
		return nil, err
	}
	return Open(ctx, path)
}

// PathFromURL extracts the file path of a driver:///path URL.
func PathFromURL(url string) (string, error) {
	scheme, path, ok := strings.Cut(url, ":///")
	if !ok {
		return "", fmt.Errorf("sqlite: %q is not a driver:///path url", url)
	}
	for _, known := range schemes {
		if scheme == known {
			if path == "" {
				return "", fmt.Errorf("sqlite: %q has no database path", url)
			}
			return path, nil
		}
	}
	return "", fmt.Errorf("sqlite: unsupported driver %q", scheme)
}

// Migrate applies every pending migration, reporting progress to logger.
func Migrate(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "goose")
	os.Exit(1)
}
