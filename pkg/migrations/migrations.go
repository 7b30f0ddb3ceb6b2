package migrations

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embedded embed.FS

// Dialect maps a database type from the configuration to its goose dialect.
func Dialect(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "pgsql", "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
}

// MigrateStore applies all pending migrations. When migrationFolder is empty the migrations
// embedded in the binary are used.
func MigrateStore(db *gorm.DB, dbType string, migrationFolder string) error {
	goose.SetLogger(&logger{})

	migrationsFS, err := source(migrationFolder)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)

	dialect, err := Dialect(dbType)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return goose.Up(sqlDB, ".")
}

func source(migrationFolder string) (fs.FS, error) {
	if migrationFolder == "" {
		return fs.Sub(embedded, "sql")
	}

	fi, err := os.Stat(migrationFolder)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsDir() {
		return nil, fmt.Errorf("failed to open migration folder: %s is not a folder", migrationFolder)
	}
	return os.DirFS(migrationFolder), nil
}

// logger routes goose output to zap.
type logger struct{}

func (m *logger) Printf(format string, v ...interface{}) {
	zap.S().Named("migrations").Infof(format, v...)
}

func (m *logger) Fatalf(format string, v ...interface{}) {
	zap.S().Named("migrations").Fatalf(format, v...)
}
