package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/client"
	"github.com/cory-johannsen/hexsheet/internal/config"
	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/observability"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// sheetOps is the set of rule-bearing operations. sheet.Service runs them
// locally; client.Client asks the server to run them.
type sheetOps interface {
	CastSpell(ctx context.Context, spellID int64) (*sheet.CastOutcome, error)
	Rest(ctx context.Context, id int64, t rest.Type) (*character.Character, error)
	SetResource(ctx context.Context, id int64, f resource.Field, raw string) (*character.Character, error)
	AdjustResource(ctx context.Context, id int64, f resource.Field, delta int) (*character.Character, error)
	ToggleEquip(ctx context.Context, itemID int64) (*inventory.Item, error)
}

var (
	_ sheetOps = (*sheet.Service)(nil)
	_ sheetOps = (*client.Client)(nil)
)

// app holds the flags and the clients built from them before a subcommand runs.
type app struct {
	out io.Writer

	configPath string
	envFile    string
	baseURL    string
	timeout    time.Duration
	remote     bool
	verbose    bool

	logger *zap.Logger
	api    *client.Client
	ops    sheetOps
}

func (a *app) setup() error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	var (
		cfg config.Config
		err error
	)
	if a.configPath == "" {
		cfg, err = config.LoadDefaults()
	} else {
		cfg, err = config.Load(a.configPath)
	}
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.Client.BaseURL = a.baseURL
	}
	if a.timeout > 0 {
		cfg.Client.Timeout = a.timeout
	}

	a.logger = zap.NewNop()
	if a.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "console"
		if a.logger, err = observability.NewLogger(cfg.Logging); err != nil {
			return err
		}
	}

	a.api = client.FromConfig(cfg.Client, a.logger)
	if a.remote {
		a.ops = a.api
		return nil
	}
	rules := rest.Rules{
		Short: rest.Recovery{APPercent: cfg.Rest.Short.APPercent, MPPercent: cfg.Rest.Short.MPPercent, HEXPercent: cfg.Rest.Short.HEXPercent},
		Long:  rest.Recovery{APPercent: cfg.Rest.Long.APPercent, MPPercent: cfg.Rest.Long.MPPercent, HEXPercent: cfg.Rest.Long.HEXPercent},
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	a.ops = sheet.NewService(a.api, rules, a.logger)
	return nil
}

// newRootCmd builds the command tree writing its output to out.
func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "sheetctl",
		Short:         "Inspect and play character sheets through the sheet API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "configuration file; empty = defaults and HEXSHEET_ environment")
	f.StringVar(&a.envFile, "env-file", ".env", "optional dotenv file loaded before the configuration")
	f.StringVar(&a.baseURL, "base-url", "", "API root, overrides client.base_url")
	f.DurationVar(&a.timeout, "timeout", 0, "request timeout, overrides client.timeout")
	f.BoolVar(&a.remote, "remote", false, "run cast, rest and resource edits on the server")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.createCmd(),
		a.castCmd(),
		a.restCmd(),
		a.setCmd(),
		a.adjustCmd(),
		a.toggleEquipCmd(),
	)
	return root
}
