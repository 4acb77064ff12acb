package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/k-code-yt/cashpay-ipn/pkg/db/postgres"
)

func createDatabase(cfg *postgres.PostgresConfig) error {
	adminCfg := *cfg
	adminCfg.DBName = "postgres"

	db, err := sql.Open("postgres", postgres.GetConnString(&adminCfg))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	log.Printf("Creating database '%s' if not exists...", cfg.DBName)
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.DBName))
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			log.Printf("Database '%s' already exists, skipping creation", cfg.DBName)
			return nil
		}
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Printf("Database '%s' created successfully", cfg.DBName)
	return nil
}

func main() {
	envFile := flag.String("env", ".env", "Path to .env file")
	action := flag.String("action", "up", "Migration action: up, down, or version")
	steps := flag.Int("steps", 0, "Number of migrations to apply (for down)")
	path := flag.String("path", "migrations/ipn", "Directory holding the migration files")
	createDB := flag.Bool("create-db", false, "Create the database before migrating")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: No .env file found at %s, using environment variables", *envFile)
	}

	cfg := postgres.NewPostgresConfig("shop")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid database config: %v", err)
	}

	if *createDB {
		if err := createDatabase(cfg); err != nil {
			log.Fatalf("Database setup failed: %v", err)
		}
	}

	log.Printf("Running migrations from %s", *path)

	m, err := migrate.New(fmt.Sprintf("file://%s", *path), postgres.GetMigrateURL(cfg))
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch *action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("Migrations applied successfully")

	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("Migrations rolled back successfully")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Failed to get version: %v", err)
		}
		log.Printf("Current version: %d, Dirty: %v", version, dirty)

	default:
		log.Fatalf("Unknown action: %s (use up, down, or version)", *action)
	}
}
