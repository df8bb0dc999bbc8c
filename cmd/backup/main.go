package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"linguaclash/internal/config"
	"linguaclash/internal/database"
	"linguaclash/internal/service"
)

// errCancelled is returned when the operator declines the clear prompt
var errCancelled = errors.New("import cancelled")

// backupStore is the part of service.BackupService the CLI drives
type backupStore interface {
	Export(outputPath string) error
	Import(inputPath string) error
	Clear() error
}

func main() {
	// Subcommands and their flags
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 || (os.Args[1] != "export" && os.Args[1] != "import") {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	// Parse before touching the database so a bad invocation fails fast
	if os.Args[1] == "import" {
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
	} else {
		exportCmd.Parse(os.Args[2:])
	}

	// Load configuration
	cfg := config.Load()
	if cfg.StoreBackend == "mongo" {
		log.Println("Warning: STORE_BACKEND=mongo, scores and dictionaries live in MongoDB and are not part of this backup")
	}

	// Open the relational store
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Bring the schema up to date before reading or writing rows
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupService := service.NewBackupService(db)

	if os.Args[1] == "export" {
		path, err := exportBackup(backupService, *exportOutput, time.Now())
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		if info, err := os.Stat(path); err == nil {
			log.Printf("Export complete! File size: %.2f MB", float64(info.Size())/1024/1024)
		}
		return
	}

	err = importBackup(backupService, *importInput, *importClear, os.Stdin, os.Stdout)
	switch {
	case errors.Is(err, errCancelled):
		log.Println("Import cancelled")
	case err != nil:
		log.Fatalf("Import failed: %v", err)
	default:
		log.Println("Import complete!")
	}
}

// defaultBackupPath names a backup after the moment it was taken
func defaultBackupPath(now time.Time) string {
	return fmt.Sprintf("backup_%s.json", now.Format("20060102_150405"))
}

// exportBackup writes a backup to outputPath, or to a timestamped file in the
// working directory when outputPath is empty. It returns the path written.
func exportBackup(store backupStore, outputPath string, now time.Time) (string, error) {
	if outputPath == "" {
		outputPath = defaultBackupPath(now)
	}

	// Create the target directory if needed
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Printf("Exporting database to: %s", outputPath)
	if err := store.Export(outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// importBackup loads inputPath. With clearData the operator must type "yes"
// on confirm before anything is deleted.
func importBackup(store backupStore, inputPath string, clearData bool, confirm io.Reader, prompt io.Writer) error {
	// Refuse a missing file before any destructive step
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file %s: %w", inputPath, err)
	}

	if clearData {
		fmt.Fprint(prompt, "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(confirm).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			return errCancelled
		}

		log.Println("Clearing existing data...")
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
	}

	log.Printf("Importing database from: %s", inputPath)
	return store.Import(inputPath)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `LinguaClash Database Backup Tool

Usage:
  backup export [options]    Export database to JSON file
  backup import [options]    Import database from JSON file

Export Options:
  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)

Import Options:
  -input <file>     Input file path (required)
  -clear            Clear existing data before import (WARNING: destructive)

Examples:
  backup export -output backups/today.json
  backup import -input backup.json
  backup import -input backup.json -clear

Environment Variables:
  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./linguaclash.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL
  MIGRATIONS_PATH  Migrations directory (default: ./migrations)
  STORE_BACKEND    sql or mongo; with mongo only users and feedback are backed up
`)
}
