package db

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/reflectivity.report/internal/monitoring"
)

// confirmInput is read by the force action's confirmation prompt.
var confirmInput io.Reader = os.Stdin

// RunMigrateCommand handles the 'migrate' subcommand dispatching. Status
// and help output goes to out.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("missing migrate action")
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		return err
	}

	// Open without migrating; the action decides what happens to the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	schema, err := database.Schema(migrationsFS)
	if err != nil {
		return err
	}

	switch action {
	case "up":
		return handleMigrateUp(schema)
	case "down":
		return handleMigrateDown(schema)
	case "status":
		return handleMigrateStatus(schema, migrationsFS, out)
	case "version":
		if len(args) < 2 {
			return fmt.Errorf("usage: reflectivity migrate version <version_number>")
		}
		return handleMigrateVersion(schema, args[1])
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: reflectivity migrate force <version_number>")
		}
		return handleMigrateForce(schema, args[1], out)
	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("unknown migrate action: %s", action)
	}
}

func handleMigrateUp(schema *Schema) error {
	monitoring.Logf("Running migrations...")
	if err := schema.Up(); err != nil {
		return err
	}
	version, dirty, _ := schema.Version()
	monitoring.Logf("All migrations applied, current version: %d (dirty: %v)", version, dirty)
	return nil
}

func handleMigrateDown(schema *Schema) error {
	monitoring.Logf("Rolling back one migration...")
	if err := schema.Down(); err != nil {
		return err
	}
	version, dirty, _ := schema.Version()
	monitoring.Logf("Rolled back, current version: %d (dirty: %v)", version, dirty)
	return nil
}

func handleMigrateStatus(schema *Schema, migrationsFS fs.FS, out io.Writer) error {
	version, dirty, err := schema.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	latest, err := latestMigration(migrationsFS)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Migration Status ===")
	fmt.Fprintf(out, "Current version: %d\n", version)
	fmt.Fprintf(out, "Latest version: %d\n", latest)
	fmt.Fprintf(out, "Dirty: %v\n", dirty)
	if dirty {
		fmt.Fprintln(out, "\nWARNING: a migration failed mid-execution.")
		fmt.Fprintln(out, "Inspect the database, then run: reflectivity migrate force <version>")
	} else if version < latest {
		fmt.Fprintf(out, "%d migration(s) pending; run: reflectivity migrate up\n", latest-version)
	}
	return nil
}

func handleMigrateVersion(schema *Schema, versionStr string) error {
	target, err := strconv.ParseUint(versionStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", versionStr)
	}
	monitoring.Logf("Migrating to version %d...", target)
	return schema.To(uint(target))
}

func handleMigrateForce(schema *Schema, versionStr string, out io.Writer) error {
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return fmt.Errorf("invalid version number: %s", versionStr)
	}

	fmt.Fprintf(out, "WARNING: forcing migration version to %d\n", version)
	fmt.Fprintln(out, "This should only be used to recover from a dirty migration state.")
	fmt.Fprint(out, "Continue? [y/N]: ")
	response, _ := bufio.NewReader(confirmInput).ReadString('\n')
	if r := strings.TrimSpace(response); r != "y" && r != "Y" {
		monitoring.Logf("Aborted")
		return nil
	}

	if err := schema.Force(version); err != nil {
		return err
	}
	monitoring.Logf("Migration version forced to %d", version)
	return nil
}

// latestMigration returns the highest version number among the .up.sql
// files in migrationsFS.
func latestMigration(migrationsFS fs.FS) (uint, error) {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to list migrations: %w", err)
	}
	var latest uint
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			continue
		}
		latest = max(latest, uint(v))
	}
	return latest, nil
}

// PrintMigrateHelp displays help for migrate commands.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprintln(out, `Usage: reflectivity [-db file] migrate <action> [args]

Actions:
  up                 apply all pending migrations
  down               roll back the most recent migration
  status             show the current and latest schema version
  version <N>        migrate up or down to version N
  force <N>          set the recorded version without running SQL (recovery only)
  help               show this help

Set REFLECTIVITY_MIGRATIONS_DIR to use on-disk migrations instead of the embedded ones.`)
}
