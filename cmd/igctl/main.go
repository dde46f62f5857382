// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command igctl runs API operations from the shell, keeping the session
// in a state file between runs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"code.hybscloud.com/igx"
	"code.hybscloud.com/igx/statestore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the global flags and the resources shared by subcommands.
type app struct {
	configPath string
	statePath  string
	logFile    string
	delay      time.Duration
	verbose    bool

	out      io.Writer
	log      zerolog.Logger
	closeLog func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot(&app{out: os.Stdout}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "igctl:", err)
		os.Exit(1)
	}
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "igctl",
		Short:         "Command line client for the private mobile photo API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.log, a.closeLog = newLogger(a.logFile, a.verbose)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "TOML configuration file")
	flags.StringVar(&a.statePath, "state", defaultStatePath(), "session state file (.toml, or .db for SQLite)")
	flags.StringVar(&a.logFile, "log-file", "", "also write JSON logs to this rotated file")
	flags.DurationVar(&a.delay, "delay", igx.DefaultDelay, "minimum delay between two calls")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every call")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.timelineCommand(),
		a.userFeedCommand(),
		a.followersCommand(),
		a.searchUsersCommand(),
		a.likeCommand(),
		a.followCommand(),
		a.stateCommand(),
	)
	return root
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "igctl-state.toml"
	}
	return filepath.Join(dir, "igctl", "state.toml")
}

// config returns the file configuration with flag overrides applied.
func (a *app) config(cmd *cobra.Command) (igx.Config, error) {
	cfg := igx.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = igx.LoadConfig(a.configPath); err != nil {
			return cfg, errors.Wrap(err, "loading config")
		}
	}
	if cmd.Flags().Changed("delay") {
		cfg.Delay = a.delay
	}
	return cfg, errors.Wrap(cfg.Validate(), "validating config")
}

// operation is one client call made by a subcommand.
type operation func(ctx context.Context, c *igx.Client) (igx.Body, error)

// run loads the session, performs op, saves the session and prints the
// reply. The session is saved even when op fails: its cookies may have
// changed.
func (a *app) run(cmd *cobra.Command, op operation) error {
	ctx := cmd.Context()
	cfg, err := a.config(cmd)
	if err != nil {
		return err
	}
	store, closeStore, err := statestore.Open(a.statePath, a.log)
	if err != nil {
		return errors.Wrap(err, "opening state")
	}
	defer closeStore()

	seed, err := store.Load(ctx)
	if err != nil && !errors.Is(err, statestore.ErrNotFound) {
		return errors.Wrap(err, "loading state")
	}
	c, err := igx.New(seed, append(cfg.Options(), igx.WithLogger(a.log))...)
	if err != nil {
		return errors.Wrap(err, "restoring session")
	}

	body, opErr := op(ctx, c)
	if err := store.Save(context.WithoutCancel(ctx), c.Export()); err != nil {
		a.log.Error().Err(err).Str("path", a.statePath).Msg("saving state")
		if opErr == nil {
			return errors.Wrap(err, "saving state")
		}
	}
	if opErr != nil {
		return errors.Wrap(opErr, cmd.Name())
	}
	return a.print(body)
}

func (a *app) print(body igx.Body) error {
	_, err := fmt.Fprintln(a.out, body.Get("@pretty").Raw)
	return err
}
