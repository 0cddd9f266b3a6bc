package migration

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/xcontext"
)

//go:embed mysql/*.sql
var mysqlFS embed.FS

func mysqlSource() (source.Driver, error) {
	return iofs.New(mysqlFS, "mysql")
}

// Migrate brings the schema up to date. MySQL runs the versioned files embedded in the
// binary; a local sqlite database is migrated from the entities instead.
func Migrate(ctx context.Context) error {
	cfg := xcontext.Configs(ctx).Database
	if cfg.SqliteFile != "" {
		return entity.MigrateTable(ctx)
	}

	db, err := xcontext.DB(ctx).DB()
	if err != nil {
		return err
	}

	src, err := mysqlSource()
	if err != nil {
		return err
	}

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Database, driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	xcontext.Logger(ctx).Infof("Database schema is at version %d (dirty=%t)", version, dirty)
	return nil
}
