package migration

import (
	"io"
	"strings"
	"testing"

	"github.com/manalab/backend/config"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/testutil"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func TestMysqlSource(t *testing.T) {
	src, err := mysqlSource()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), version)

	r, _, err := src.ReadUp(version)
	require.NoError(t, err)
	defer r.Close()

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	for _, table := range []string{"accounts", "donation_contracts", "payout_requests", "reward_pools", "reward_claims"} {
		require.True(t, strings.Contains(string(b), "`"+table+"`"), table)
	}

	r, _, err = src.ReadDown(version)
	require.NoError(t, err)
	r.Close()
}

func TestMigrateSqlite(t *testing.T) {
	ctx := testutil.WithConfigs(testutil.MockContext(), func(cfg *config.Configs) {
		cfg.Database.SqliteFile = ":memory:"
	})

	// Running twice leaves the schema as is.
	require.NoError(t, Migrate(ctx))
	require.NoError(t, Migrate(ctx))
	require.True(t, xcontext.DB(ctx).Migrator().HasTable(&entity.RewardClaim{}))
}
