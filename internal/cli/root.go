package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/kissboard/internal/board"
	"github.com/existflow/kissboard/internal/config"
	"github.com/existflow/kissboard/internal/db"
	"github.com/existflow/kissboard/internal/logger"
	"github.com/existflow/kissboard/internal/tui"
)

// app carries what every command needs. The database is opened on first use
// and closed when the command finishes.
type app struct {
	cfg    *config.Config
	dbPath string

	db    *db.DB
	board *board.Board
}

func (a *app) open(ctx context.Context) (*board.Board, error) {
	if a.board != nil {
		return a.board, nil
	}

	driver, dsn := a.cfg.DBDriver, a.cfg.DSN()
	if a.dbPath != "" {
		driver, dsn = db.DriverSQLite, a.dbPath
	}

	database, err := db.Open(ctx, driver, dsn)
	if err != nil {
		logger.Error("Failed to open database", logger.F("driver", driver), logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a.db = database
	a.board = board.New(database)
	return a.board, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	_ = a.db.Close()
	a.db, a.board = nil, nil
	logger.Info("Database closed")
}

// NewRootCmd builds the kissboard command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	var (
		logLevel   string
		logFile    string
		logConsole bool
	)

	rootCmd := &cobra.Command{
		Use:   "kissboard",
		Short: "KissBoard - kanban board for the terminal",
		Long: `KissBoard keeps projects and their tasks in three ordered columns
(To Do, In Progress, Done).

Run 'kissboard' without arguments to launch the interactive board.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config from file (or defaults if not exists)
			cfg, err := config.Load()
			if err != nil {
				logger.Warn("Failed to load config, using defaults", logger.F("error", err))
				cfg = config.DefaultConfig()
			}

			// Override with CLI flags if provided
			configChanged := false
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
				configChanged = true
			}
			if cmd.Flags().Changed("log-file") {
				cfg.LogFile = logFile
				configChanged = true
			}
			if cmd.Flags().Changed("log-console") {
				cfg.LogConsole = logConsole
				configChanged = true
			}

			// Save config if changed via CLI flags
			if configChanged {
				if err := cfg.Save(); err != nil {
					logger.Warn("Failed to save config", logger.F("error", err))
				}
			}

			if a.dbPath == "" {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid config %s: %w", config.Path(), err)
				}
			}
			a.cfg = cfg

			logConfig := logger.Config{
				Level:      logger.ParseLevel(cfg.LogLevel),
				FilePath:   cfg.LogFile,
				MaxSize:    10 * 1024 * 1024, // 10MB
				MaxAge:     7,
				MaxBackups: 5,
				Console:    cfg.LogConsole,
			}

			if err := logger.Init(logConfig); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			logger.Info("KissBoard started", logger.F("command", cmd.Name()))
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			logger.Info("Launching TUI")
			if err := tui.Run(cmd.Context(), b); err != nil {
				logger.Error("TUI error", logger.F("error", err))
				return fmt.Errorf("failed to run TUI: %w", err)
			}

			logger.Info("TUI exited normally")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
			logger.Info("KissBoard exiting", logger.F("command", cmd.Name()))
		},
	}

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Use this SQLite file instead of the configured database")

	// Add subcommands
	rootCmd.AddCommand(newProjectCmd(a))
	rootCmd.AddCommand(newTaskCmd(a))
	rootCmd.AddCommand(newTaskAddCmd(a))
	rootCmd.AddCommand(newTaskListCmd(a))
	rootCmd.AddCommand(newDoneCmd(a))
	rootCmd.AddCommand(newImageCmd(a))
	rootCmd.AddCommand(newContextCmd(a))
	rootCmd.AddCommand(newDoctorCmd(a))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	defer func() { _ = logger.Close() }()
	return NewRootCmd().ExecuteContext(context.Background())
}
