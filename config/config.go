package config

import (
	"errors"
	"fmt"
	"time"
)

type Configs struct {
	Env string `toml:"env"`

	Database    DatabaseConfigs    `toml:"database"`
	ApiServer   APIServerConfigs   `toml:"api_server"`
	Auth        AuthConfigs        `toml:"auth"`
	Redis       RedisConfigs       `toml:"redis"`
	Kafka       KafkaConfigs       `toml:"kafka"`
	Log         LogConfigs         `toml:"log"`
	Contract    ContractConfigs    `toml:"contract"`
	Reward      RewardConfigs      `toml:"reward"`
	Pin         PinConfigs         `toml:"pin"`
	Transaction TransactionConfigs `toml:"transaction"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// SqliteFile switches the backend to a local sqlite database, used for development.
	SqliteFile string `toml:"sqlite_file"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type APIServerConfigs struct {
	Host         string   `toml:"host"`
	Port         string   `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
	MaxLimit     int      `toml:"max_limit"`
	DefaultLimit int      `toml:"default_limit"`
	NodeID       int64    `toml:"node_id"`
}

type AuthConfigs struct {
	TokenSecret     string `toml:"token_secret"`
	AccessTokenName string `toml:"access_token_name"`
	AdminRole       string `toml:"admin_role"`
}

type RedisConfigs struct {
	Addr     string `toml:"addr"`
	PoolSize int    `toml:"pool_size"`
}

type KafkaConfigs struct {
	Addr              string `toml:"addr"`
	ClientID          string `toml:"client_id"`
	PayoutEventsTopic string `toml:"payout_events_topic"`
}

type LogConfigs struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type ContractConfigs struct {
	// PeriodDays is the length of one eligibility period.
	PeriodDays int `toml:"period_days"`
	// ReleasePercent is the share of the principal released per period.
	ReleasePercent int64 `toml:"release_percent"`
	MaxWithdrawals int   `toml:"max_withdrawals"`
	TermMonths     int   `toml:"term_months"`
	MinPrincipal   int64 `toml:"min_principal"`
	// MaxPrincipal bounds a single pledge so balances and totals stay far from int64 limits.
	MaxPrincipal int64 `toml:"max_principal"`
}

type RewardConfigs struct {
	MinClaimAmount int64         `toml:"min_claim_amount"`
	MaxClaimAmount int64         `toml:"max_claim_amount"`
	CacheTTL       time.Duration `toml:"cache_ttl"`
}

type PinConfigs struct {
	MaxAttempts     int           `toml:"max_attempts"`
	LockoutDuration time.Duration `toml:"lockout_duration"`
	MinLength       int           `toml:"min_length"`
	MaxLength       int           `toml:"max_length"`
	HashCost        int           `toml:"hash_cost"`
}

type TransactionConfigs struct {
	MaxRetries int `toml:"max_retries"`
}

// Default returns the configurations matching the contract terms: 12 withdrawals of 30% of
// the principal, one per 30-day period, within one year.
func Default() Configs {
	return Configs{
		Env: "local",
		ApiServer: APIServerConfigs{
			Port:         "8080",
			MaxLimit:     50,
			DefaultLimit: 20,
			NodeID:       1,
		},
		Auth: AuthConfigs{
			AccessTokenName: "access_token",
			AdminRole:       "admin",
		},
		Redis: RedisConfigs{Addr: "localhost:6379", PoolSize: 5},
		Kafka: KafkaConfigs{
			ClientID:          "mana-backend",
			PayoutEventsTopic: "payout_request",
		},
		Log: LogConfigs{Level: "INFO"},
		Contract: ContractConfigs{
			PeriodDays:     30,
			ReleasePercent: 30,
			MaxWithdrawals: 12,
			TermMonths:     12,
			MinPrincipal:   100,
			MaxPrincipal:   100_000_000_000,
		},
		Reward: RewardConfigs{
			MinClaimAmount: 100,
			MaxClaimAmount: 500,
			CacheTTL:       30 * time.Second,
		},
		Pin: PinConfigs{
			MaxAttempts:     5,
			LockoutDuration: 30 * time.Minute,
			MinLength:       4,
			MaxLength:       6,
		},
		Transaction: TransactionConfigs{MaxRetries: 3},
	}
}

// Validate rejects values the settlement rules cannot run with.
func (c Configs) Validate() error {
	switch {
	case c.Contract.PeriodDays <= 0:
		return errors.New("contract.period_days must be positive")
	case c.Contract.ReleasePercent <= 0 || c.Contract.ReleasePercent > 100:
		return errors.New("contract.release_percent must be in (0, 100]")
	case c.Contract.MaxWithdrawals <= 0:
		return errors.New("contract.max_withdrawals must be positive")
	case c.Contract.TermMonths <= 0:
		return errors.New("contract.term_months must be positive")
	case c.Contract.MinPrincipal <= 0 || c.Contract.MaxPrincipal < c.Contract.MinPrincipal:
		return errors.New("contract principal bounds are invalid")
	case c.Reward.MinClaimAmount <= 0 || c.Reward.MaxClaimAmount < c.Reward.MinClaimAmount:
		return errors.New("reward claim amount bounds are invalid")
	case c.Pin.MaxAttempts <= 0:
		return errors.New("pin.max_attempts must be positive")
	case c.Pin.MinLength <= 0 || c.Pin.MaxLength < c.Pin.MinLength:
		return errors.New("pin length bounds are invalid")
	case c.Transaction.MaxRetries < 0:
		return errors.New("transaction.max_retries must not be negative")
	case c.ApiServer.DefaultLimit <= 0 || c.ApiServer.MaxLimit < c.ApiServer.DefaultLimit:
		return errors.New("api_server limits are invalid")
	}

	return nil
}
