package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"safari_tours/internal/adapters/observability"
	"safari_tours/internal/shared"
	mysqlrepo "safari_tours/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, "safari-migrate", cfg.LogLevel)

	action := flag.String("action", "up", "up | down | version | force")
	version := flag.Int("version", -1, "schema version for -action=force")
	flag.Parse()

	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open mysql")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}

	m, err := mysqlrepo.NewMigrator(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create migrator")
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("close migrator")
		}
	}()

	switch *action {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "force":
		if *version < 0 {
			log.Fatal().Msg("-version is required with -action=force")
		}
		err = m.Force(*version)
	case "version":
		v, dirty, verr := m.Version()
		if verr == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
		}
		err = verr
	default:
		log.Fatal().Str("action", *action).Msg("unknown action")
	}
	if err != nil {
		log.Fatal().Err(err).Str("action", *action).Msg("migration failed")
	}
	log.Info().Str("action", *action).Msg("migration done")
}
