package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"

	"github.com/Konyali-Saat/konyali-optik-sayim/internal/journal"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "up":
		runUp(args)
	case "down":
		runDown(args)
	case "force":
		runForce(args)
	case "version":
		runVersion()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [args]\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up [n]        Apply all journal migrations or the next n")
	fmt.Fprintln(os.Stderr, "  down [n]      Roll back all journal migrations or the last n")
	fmt.Fprintln(os.Stderr, "  force <ver>   Force set the migration version (fixes dirty state)")
	fmt.Fprintln(os.Stderr, "  version       Print the applied migration version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintln(os.Stderr, "  DATABASE_URL  PostgreSQL connection string for the count journal")
}

func runUp(args []string) {
	m := mustMigrator()
	defer closeMigrator(m)

	if len(args) == 0 {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			exitWithError(err)
		}
		return
	}

	steps, err := parseSteps(args[0])
	if err != nil {
		exitWithError(err)
	}
	if err := m.Steps(steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		exitWithError(err)
	}
}

func runDown(args []string) {
	m := mustMigrator()
	defer closeMigrator(m)

	if len(args) == 0 {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			exitWithError(err)
		}
		return
	}

	steps, err := parseSteps(args[0])
	if err != nil {
		exitWithError(err)
	}
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		exitWithError(err)
	}
}

func runForce(args []string) {
	if len(args) == 0 {
		exitWithError(errors.New("version number is required"))
	}

	version, err := strconv.Atoi(args[0])
	if err != nil {
		exitWithError(fmt.Errorf("invalid version: %s", args[0]))
	}

	m := mustMigrator()
	defer closeMigrator(m)

	if err := m.Force(version); err != nil {
		exitWithError(err)
	}
	fmt.Printf("Forced version to %d\n", version)
}

func runVersion() {
	m := mustMigrator()
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return
	}
	if err != nil {
		exitWithError(err)
	}
	fmt.Println(formatVersion(version, dirty))
}

func mustMigrator() *migrate.Migrate {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		exitWithError(err)
	}
	m, err := journal.NewMigrator(databaseURL)
	if err != nil {
		exitWithError(err)
	}
	return m
}

func databaseURLFromEnv() (string, error) {
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return "", errors.New("DATABASE_URL is not set")
	}
	return databaseURL, nil
}

func parseSteps(value string) (int, error) {
	steps, err := strconv.Atoi(value)
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid steps: %s", value)
	}
	return steps, nil
}

func formatVersion(version uint, dirty bool) string {
	if dirty {
		return fmt.Sprintf("Version %d (dirty)", version)
	}
	return fmt.Sprintf("Version %d", version)
}

func closeMigrator(m *migrate.Migrate) {
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		fmt.Fprintf(os.Stderr, "source close error: %v\n", sourceErr)
	}
	if dbErr != nil {
		fmt.Fprintf(os.Stderr, "db close error: %v\n", dbErr)
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
	usage()
	os.Exit(1)
}
