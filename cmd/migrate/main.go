package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/asakaida/rolegate/internal/infrastructure/config"
	"github.com/asakaida/rolegate/internal/infrastructure/database"
	"github.com/asakaida/rolegate/internal/infrastructure/logging"
	"github.com/golang-migrate/migrate/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	envFlag string
	db      *database.Database
	logger  = hclog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for rolegate",
	Long: `Database migration tool for rolegate.
Manages PostgreSQL or SQLite schema migrations using golang-migrate.
Migrations are embedded in the binary; DB_DRIVER selects the set to apply.`,
	PersistentPreRunE: setupDatabase,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Long:  `Apply all pending migrations to the database.`,
	RunE:  runUp,
}

var downCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback migrations",
	Long:  `Rollback the specified number of migrations (default: 1).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDown,
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate to a specific version",
	Long:  `Migrate to a specific version number.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGoto,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show current migration version",
	Long:  `Display the current migration version of the database.`,
	RunE:  runVersion,
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Force set migration version (use with caution)",
	Long:  `Force set the migration version without running migrations. Use with caution.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runForce,
}

// migrator is the subset of *migrate.Migrate the commands drive
type migrator interface {
	Up() error
	Steps(n int) error
	Migrate(version uint) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Close() (source error, database error)
}

// newMigrator opens a migrator over the connected database; closing it also closes the database
var newMigrator = func() (migrator, error) {
	return db.NewMigrate()
}

func init() {
	// Add global --env flag to all commands
	rootCmd.PersistentFlags().StringVarP(&envFlag, "env", "e", "dev", "Environment to use (dev, test, prod)")

	// Add subcommands
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(gotoCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(forceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func setupDatabase(cmd *cobra.Command, args []string) error {
	// Initialize configuration from .env.{env} file
	if err := config.InitConfig(envFlag); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = logging.NewLogger("migrate", cfg.Log)
	logger.Info("using environment", "env", envFlag)

	// Connect to database
	db, err = database.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("connected to database", "target", database.Describe(&cfg.Database))
	return nil
}

// withMigrator runs fn and closes the migrator afterwards, whether fn fails or not
func withMigrator(fn func(m migrator) error) error {
	m, err := newMigrator()
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m)

	return fn(m)
}

func closeMigrate(m migrator) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("failed to close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("failed to close database", "error", dbErr)
	}
}

func parseVersion(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", arg, err)
	}
	return version, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m migrator) error {
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Info("no migrations to apply")
		case err != nil:
			return fmt.Errorf("migration up failed: %w", err)
		default:
			logger.Info("migration up completed successfully")
		}
		return nil
	})
}

func runDown(cmd *cobra.Command, args []string) error {
	steps := 1 // Default: rollback 1 migration
	if len(args) > 0 {
		n, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		steps = n
	}

	return withMigrator(func(m migrator) error {
		err := m.Steps(-steps)
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Info("no migrations to rollback")
		case err != nil:
			return fmt.Errorf("migration down failed: %w", err)
		default:
			logger.Info("migration down completed successfully", "steps", steps)
		}
		return nil
	})
}

func runGoto(cmd *cobra.Command, args []string) error {
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if version < 0 {
		return fmt.Errorf("invalid version %d: must not be negative", version)
	}

	return withMigrator(func(m migrator) error {
		err := m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			logger.Info("already at version", "version", version)
		case err != nil:
			return fmt.Errorf("migration goto failed: %w", err)
		default:
			logger.Info("migration goto completed successfully", "version", version)
		}
		return nil
	})
}

func runVersion(cmd *cobra.Command, args []string) error {
	return withMigrator(func(m migrator) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied yet")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}

		logger.Info("current version", "version", version, "dirty", dirty)
		return nil
	})
}

func runForce(cmd *cobra.Command, args []string) error {
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}

	return withMigrator(func(m migrator) error {
		if err := m.Force(version); err != nil {
			return fmt.Errorf("migration force failed: %w", err)
		}

		logger.Info("migration forced", "version", version)
		return nil
	})
}
