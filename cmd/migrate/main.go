package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"payvault/internal/config"
	"payvault/internal/logger"
)

const defaultDir = "migrations"

// Schema changes run here, once, at deploy time. The engine itself never
// checks or creates tables at runtime.
func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version")
	dir := flag.String("dir", defaultDir, "goose migrations directory")
	flag.Parse()

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, "payvault-migrate")

	db, err := sql.Open("mysql", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := goose.SetDialect("mysql"); err != nil {
		log.Fatal().Err(err).Msg("set goose dialect")
	}

	if err := goose.RunContext(ctx, *cmd, db, *dir); err != nil {
		log.Fatal().Err(err).Str("cmd", *cmd).Msg("migration failed")
	}

	log.Info().Str("cmd", *cmd).Msg("migration command finished")
}
