package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigs_Validate(t *testing.T) {
	require.NoError(t, Default().Validate())

	tests := []struct {
		name   string
		change func(*Configs)
	}{
		{name: "zero period", change: func(c *Configs) { c.Contract.PeriodDays = 0 }},
		{name: "release above 100 percent", change: func(c *Configs) { c.Contract.ReleasePercent = 101 }},
		{name: "max principal below min", change: func(c *Configs) { c.Contract.MaxPrincipal = 1 }},
		{name: "zero claim amount", change: func(c *Configs) { c.Reward.MinClaimAmount = 0 }},
		{name: "reversed claim bounds", change: func(c *Configs) { c.Reward.MaxClaimAmount = 1 }},
		{name: "zero pin attempts", change: func(c *Configs) { c.Pin.MaxAttempts = 0 }},
		{name: "reversed pin length", change: func(c *Configs) { c.Pin.MaxLength = 2 }},
		{name: "negative retries", change: func(c *Configs) { c.Transaction.MaxRetries = -1 }},
		{name: "default limit above max", change: func(c *Configs) { c.ApiServer.DefaultLimit = 100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.change(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
