package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/subosito/gotenv"

	"github.com/daccred/lumenforge.attest.so/config"
	"github.com/daccred/lumenforge.attest.so/controllers"
	"github.com/daccred/lumenforge.attest.so/db"
	"github.com/daccred/lumenforge.attest.so/handlers"
	"github.com/daccred/lumenforge.attest.so/server"
)

func main() {
	environment := flag.String("e", "development", "")
	flag.Usage = func() {
		fmt.Println("Usage: server -e {mode}")
		os.Exit(1)
	}
	flag.Parse()

	gotenv.Load()
	config.Init(*environment)

	logger := logrus.WithField("service", "forge")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = config.DatabaseURL()
	}
	dbConn, err := db.Connect(databaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer dbConn.Close()

	forge, err := handlers.NewForge(&handlers.Config{
		NetworkPassphrase: config.NetworkPassphrase(),
		BaseFee:           config.BaseFee(),
		LogLevel:          config.LogLevel(),
	}, dbConn, logger)
	if err != nil {
		logger.Fatalf("failed to create forge: %v", err)
	}

	router := server.NewRouter(controllers.NewForgeController(dbConn, forge))

	s := &server.Server{}
	if err := s.Run(router, config.Port()); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
