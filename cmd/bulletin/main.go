// Package main provides the CLI entry point for the bulletin pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin"
	"github.com/dailybulletin/bulletin/pkg/bulletin/acquire"
	"github.com/dailybulletin/bulletin/pkg/bulletin/escalate"
	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	dateFlag   string
	buildDir   string
	verbose    bool
	force      bool

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bulletin",
		Short: "Build the school bulletin data",
		Long: `bulletin extracts the weekly schedule (community time, AODs, menus and
snacks) from the week's source documents and writes per-day summaries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = bulletin.NewLogger(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "Target date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&buildDir, "build-dir", "", "Build directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	weeklyCmd := &cobra.Command{
		Use:   "weekly",
		Short: "Extract the weekly record (default: the coming Monday)",
		Args:  cobra.NoArgs,
		RunE:  runWeekly,
	}
	weeklyCmd.Flags().BoolVar(&force, "force", false, "Re-extract even if the week already has a record")

	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Write the daily summary (default: tomorrow)",
		Args:  cobra.NoArgs,
		RunE:  runDaily,
	}

	rootCmd.AddCommand(weeklyCmd, dailyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSettings() (*bulletin.Config, bulletin.Options, error) {
	cfg := &bulletin.Config{}
	if configPath != "" {
		var err error
		if cfg, err = bulletin.LoadConfig(configPath); err != nil {
			return nil, bulletin.Options{}, err
		}
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, bulletin.Options{}, err
	}
	if buildDir != "" {
		opts.BuildDir = buildDir
	}
	opts.Force = force
	return cfg, opts, nil
}

// targetDate parses --date, or derives the default from now.
func targetDate(loc *time.Location, now time.Time, fallback func(models.Date) models.Date) (models.Date, error) {
	if dateFlag != "" {
		d, err := models.ParseDate(dateFlag, loc)
		if err != nil {
			return models.Date{}, fmt.Errorf("invalid --date %q: %w", dateFlag, err)
		}
		return d, nil
	}
	return fallback(models.NewDate(now.In(loc))), nil
}

// nextMonday returns d if it is a Monday, otherwise the following Monday.
func nextMonday(d models.Date) models.Date {
	return d.AddDays((8 - int(d.Weekday())) % 7)
}

func tomorrow(d models.Date) models.Date {
	return d.AddDays(1)
}

func openStore(cfg *bulletin.Config, opts bulletin.Options) (*store.Store, error) {
	return store.Open(cfg.DatabasePath(opts.BuildDir), opts.BuildDir)
}

func runWeekly(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadSettings()
	if err != nil {
		return err
	}
	week, err := targetDate(opts.Location, time.Now(), nextMonday)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	var sig escalate.Signal
	switch cfg.Escalation.Signal {
	case "file":
		sig = &escalate.FileSignal{Timeout: cfg.Escalation.Timeout}
	case "", "stdin":
		sig = &escalate.ReaderSignal{In: os.Stdin, Out: os.Stderr}
	default:
		return fmt.Errorf("unknown escalation signal %q", cfg.Escalation.Signal)
	}
	esc := &escalate.Editor{Command: opts.EscalateCommand, Signal: sig, Logger: logger}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := bulletin.NewPipeline(opts, st, acquire.NewURLFetcher(cfg.FetchURLs()), esc, logger)
	res, err := p.RunWeek(ctx, week)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}

func runDaily(cmd *cobra.Command, args []string) error {
	cfg, opts, err := loadSettings()
	if err != nil {
		return err
	}
	day, err := targetDate(opts.Location, time.Now(), tomorrow)
	if err != nil {
		return err
	}

	var cycle bulletin.CycleData
	if cfg.General.CycleData != "" {
		if cycle, err = bulletin.LoadCycleData(cfg.General.CycleData); err != nil {
			return err
		}
	}

	st, err := openStore(cfg, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	path, err := bulletin.RunDay(cmd.Context(), st, st, day, cycle, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
