// Package main starts the wallet ledger API server.
package main

import (
	"github.com/rs/zerolog/log"

	"github.com/fintru/wallet-ledger/cmd/httpserver"
	"github.com/fintru/wallet-ledger/internal/middleware"
	"github.com/fintru/wallet-ledger/pkg/configpkg"
	"github.com/fintru/wallet-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msg("WALLET LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
