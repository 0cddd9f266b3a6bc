package testutil

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/manalab/backend/config"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/logger"
	"github.com/manalab/backend/pkg/xcontext"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MockContext returns a context bound to a fresh in-memory database with every table
// migrated. The database has a single connection, so transactions of concurrent callers run
// one after another.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.Default()
	cfg.Auth.TokenSecret = "secret"
	cfg.Pin.HashCost = bcrypt.MinCost

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithAccessToken(ctx, xcontext.AccessToken{ID: userID, Name: userID})
}

func MockContextWithAdmin(ctx context.Context, userID string) context.Context {
	return xcontext.WithAccessToken(ctx, xcontext.AccessToken{
		ID:   userID,
		Name: userID,
		Role: xcontext.Configs(ctx).Auth.AdminRole,
	})
}

// WithConfigs changes the configurations carried by ctx.
func WithConfigs(ctx context.Context, change func(*config.Configs)) context.Context {
	cfg := xcontext.Configs(ctx)
	change(&cfg)
	return xcontext.WithConfigs(ctx, cfg)
}
