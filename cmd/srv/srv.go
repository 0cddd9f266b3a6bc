package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/config"
	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/domain"
	"github.com/manalab/backend/internal/domain/lifecycle"
	"github.com/manalab/backend/internal/domain/pingate"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/migration"
	"github.com/manalab/backend/pkg/idutil"
	"github.com/manalab/backend/pkg/kafka"
	"github.com/manalab/backend/pkg/logger"
	"github.com/manalab/backend/pkg/pubsub"
	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/manalab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	clock       clockwork.Clock
	redisClient xredis.Client
	publisher   pubsub.Publisher
	closers     []func(context.Context) error

	accountRepo       repository.AccountRepository
	contractRepo      repository.ContractRepository
	payoutRequestRepo repository.PayoutRequestRepository
	rewardRepo        repository.RewardRepository

	accountDomain       domain.AccountDomain
	contractDomain      domain.ContractDomain
	withdrawalDomain    domain.WithdrawalDomain
	payoutRequestDomain domain.PayoutRequestDomain
	rewardDomain        domain.RewardDomain
	pinDomain           domain.PinDomain

	router *router.Router
}

// setup loads the configs and the logger, which every command needs.
func (s *srv) setup(cctx *cli.Context) error {
	cfg, err := loadConfig(cctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	l, err := logger.NewZapLogger(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, l)
	s.clock = clockwork.NewRealClock()
	s.closers = append(s.closers, func(context.Context) error {
		// Syncing a terminal fails on some platforms; the buffered entries are flushed anyway.
		_ = l.Sync()
		return nil
	})

	return nil
}

// loadConfig reads path on top of the defaults. Secrets may be given through the environment
// instead of the file.
func loadConfig(path string) (config.Configs, error) {
	cfg := config.Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("cannot read config %s: %w", path, err)
		}
	}

	overrides := map[string]*string{
		"DB_HOST":           &cfg.Database.Host,
		"DB_PORT":           &cfg.Database.Port,
		"DB_NAME":           &cfg.Database.Database,
		"DB_USER":           &cfg.Database.User,
		"DB_PASSWORD":       &cfg.Database.Password,
		"DB_SQLITE_FILE":    &cfg.Database.SqliteFile,
		"API_PORT":          &cfg.ApiServer.Port,
		"AUTH_TOKEN_SECRET": &cfg.Auth.TokenSecret,
		"REDIS_ADDR":        &cfg.Redis.Addr,
		"KAFKA_ADDR":        &cfg.Kafka.Addr,
		"LOG_LEVEL":         &cfg.Log.Level,
	}
	for env, field := range overrides {
		if value, ok := os.LookupEnv(env); ok {
			*field = value
		}
	}

	if origins, ok := os.LookupEnv("API_ALLOW_ORIGINS"); ok {
		cfg.ApiServer.AllowOrigins = strings.Split(origins, ",")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (s *srv) loadDatabase() error {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	if cfg.SqliteFile != "" {
		dialector = sqlite.Open(cfg.SqliteFile)
	} else {
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			SkipInitializeWithVersion: false,
		})
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	if cfg.SqliteFile != "" {
		// Writers of a sqlite file are serialized anyway.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	s.closers = append(s.closers, func(context.Context) error { return sqlDB.Close() })
	return nil
}

func (s *srv) migrateDB() error {
	return migration.Migrate(s.ctx)
}

func (s *srv) loadRedisClient() error {
	client, err := xredis.NewClient(s.ctx, xcontext.Configs(s.ctx).Redis)
	if err != nil {
		return err
	}

	s.redisClient = client
	s.closers = append(s.closers, func(context.Context) error { return client.Close() })
	return nil
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	publisher, err := kafka.NewPublisher(cfg.ClientID, []string{cfg.Addr})
	if err != nil {
		return err
	}

	s.publisher = publisher
	s.closers = append(s.closers, publisher.Stop)
	return nil
}

func (s *srv) loadRepos() {
	s.accountRepo = repository.NewAccountRepository()
	s.contractRepo = repository.NewContractRepository()
	s.payoutRequestRepo = repository.NewPayoutRequestRepository()
	s.rewardRepo = repository.NewRewardRepository()
}

func (s *srv) loadDomains() error {
	cfg := xcontext.Configs(s.ctx)

	idGenerator, err := idutil.NewSnowflakeGenerator(cfg.ApiServer.NodeID)
	if err != nil {
		return err
	}

	lifecycleManager := lifecycle.NewManager(cfg.Contract)
	pinVerifier := common.NewPinVerifier(s.accountRepo, pingate.New(cfg.Pin), s.clock)

	s.accountDomain = domain.NewAccountDomain(s.accountRepo)
	s.contractDomain = domain.NewContractDomain(
		s.contractRepo, s.accountRepo, lifecycleManager, idGenerator, s.clock)
	s.withdrawalDomain = domain.NewWithdrawalDomain(
		s.accountRepo, s.contractRepo, s.payoutRequestRepo, lifecycleManager,
		pinVerifier, s.publisher, s.clock)
	s.payoutRequestDomain = domain.NewPayoutRequestDomain(s.payoutRequestRepo, s.clock)
	s.rewardDomain = domain.NewRewardDomain(s.rewardRepo, s.accountRepo, s.redisClient, s.clock)
	s.pinDomain = domain.NewPinDomain(s.accountRepo, pinVerifier)
	return nil
}

// close releases the resources in the reverse order of their creation.
func (s *srv) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Printf("Cannot close resource: %v", err)
		}
	}
}
