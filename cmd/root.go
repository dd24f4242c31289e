package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cancha-cli/catalog"
	"cancha-cli/config"
	"cancha-cli/reservation"
	"cancha-cli/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app holds the flags and runtime state shared by every command.
type app struct {
	outputJSON    bool
	outputCompact bool
	configFile    string
	catalogFile   string

	cfg    config.Config
	loc    *time.Location
	svc    *reservation.Service
	ledger *sql.DB
	log    *slog.Logger

	stdin      io.Reader
	stderr     io.Writer
	isTerminal func() bool
	now        func() time.Time
}

func newApp() *app {
	return &app{
		stdin:      os.Stdin,
		stderr:     os.Stderr,
		isTerminal: stdinIsTerminal,
		now:        time.Now,
	}
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cancha",
		Short: "Browse sports fields and book time slots",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.outputJSON && a.outputCompact {
				return fmt.Errorf("choose either --json or --compact")
			}
			return a.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&a.outputJSON, "json", false, "Output JSON")
	rootCmd.PersistentFlags().BoolVar(&a.outputCompact, "compact", false, "Output compact text")
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (default ~/.config/cancha/config.json)")
	rootCmd.PersistentFlags().StringVar(&a.catalogFile, "catalog", "", "Catalog JSON file (default built-in)")

	rootCmd.AddCommand(fieldsCmd(a))
	rootCmd.AddCommand(citiesCmd(a))
	rootCmd.AddCommand(availabilityCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(quoteCmd(a))
	rootCmd.AddCommand(bookCmd(a))
	rootCmd.AddCommand(bookingsCmd(a))
	return rootCmd
}

func Execute() {
	a := newApp()
	err := newRootCmd(a).Execute()
	_ = a.close()
	if err != nil {
		os.Exit(1)
	}
}

func (a *app) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := a.configFile
	if path == "" {
		defaultPath, err := storage.ConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	a.loc = loc

	catalogPath := a.catalogFile
	if catalogPath == "" {
		catalogPath = cfg.Catalog
	}
	c, err := catalog.LoadFile(catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if err := c.WithAliases(cfg.FavouriteFields); err != nil {
		return err
	}

	db, err := storage.OpenLedger(cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	a.ledger = db

	a.svc = reservation.New(c, db, reservation.Options{
		DurationMenu: cfg.DurationMenu,
		ConsumeSlots: cfg.ConsumeSlots,
		Location:     loc,
		Now:          a.now,
		Logger:       a.log,
	})
	if _, err := a.svc.Seed(ctx); err != nil {
		return err
	}

	a.log.Debug("ready",
		slog.Int("fields", len(c.Fields())),
		slog.String("ledger", ledgerLabel(cfg.Ledger)),
		slog.Bool("consume_slots", cfg.ConsumeSlots),
	)
	return nil
}

func (a *app) close() error {
	if a.ledger == nil {
		return nil
	}
	err := a.ledger.Close()
	a.ledger = nil
	return err
}

func ledgerLabel(dsn string) string {
	if dsn == "" {
		return ":memory:"
	}
	return dsn
}
