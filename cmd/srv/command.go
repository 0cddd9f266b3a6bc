package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path of the TOML configuration file",
	EnvVars: []string{"MANA_CONFIG"},
}

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "mana"
	s.app.Usage = "Donation contract settlement backend"
	s.app.Flags = []cli.Flag{configFlag}
	s.app.Before = s.setup
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it serves every contract, withdrawal and reward api.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
			Description: `Used to apply the pending schema migrations and exit.`,
		},
		{
			Action:   s.startRotate,
			Name:     "rotate",
			Usage:    "Open a new reward pool generation",
			Category: "Reward",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "code",
					Usage: "Claim code of the new generation, generated if empty",
				},
				&cli.StringFlag{
					Name:     "total",
					Usage:    "Total amount of the pool, e.g. 1500.00",
					Required: true,
				},
				&cli.DurationFlag{
					Name:  "expires-in",
					Usage: "Lifetime of the pool",
					Value: 7 * 24 * time.Hour,
				},
				&cli.StringFlag{
					Name:  "operator",
					Usage: "Recorded as the rotator of the generation",
					Value: "cli",
				},
			},
			Description: `Used by the reward pool rotation channel to close the active generation and open a new one.`,
		},
	}
}
