package main

import (
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"

	"github.com/daccred/lumenforge.attest.so/db"
	"github.com/daccred/lumenforge.attest.so/handlers"
	"github.com/daccred/lumenforge.attest.so/models"
	"github.com/daccred/lumenforge.attest.so/txbuilder"
)

func main() {
	logger := logrus.WithField("service", "healthcheck")

	log.Println("Testing forge round trip...")
	source := keypair.MustRandom()
	destination := keypair.MustRandom()

	tx, err := txbuilder.NewTransaction(txbuilder.TransactionParams{
		SourceAccount: txbuilder.MustAccount(source.Address()),
		Sequence:      1,
		Operations: []txbuilder.Operation{
			&txbuilder.Payment{
				Destination: txbuilder.MustAccount(destination.Address()),
				Asset:       txbuilder.NativeAsset,
				Amount:      100_0000000,
			},
		},
	})
	if err != nil {
		log.Fatalf("failed to build transaction: %v", err)
	}
	if err := tx.Sign(network.TestNetworkPassphrase, source); err != nil {
		log.Fatalf("failed to sign transaction: %v", err)
	}
	envelope, err := tx.EnvelopeBase64()
	if err != nil {
		log.Fatalf("failed to build envelope: %v", err)
	}
	decoded, err := txbuilder.DecodeEnvelope(envelope)
	if err != nil {
		log.Fatalf("failed to decode envelope: %v", err)
	}
	if decoded.SequenceNumber() != tx.SequenceNumber() || decoded.Fee() != tx.Fee() {
		log.Fatalf("round trip mismatch: seq %d fee %d", decoded.SequenceNumber(), decoded.Fee())
	}
	log.Println("✅ Transaction round trip successful!")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Println("DATABASE_URL not set; skipping database checks")
		return
	}

	log.Println("Testing database connection...")
	dbConn, err := db.Connect(databaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer dbConn.Close()
	log.Println("✅ Database connection successful!")

	log.Println("Testing forge creation...")
	forge, err := handlers.NewForge(&handlers.Config{
		NetworkPassphrase: network.TestNetworkPassphrase,
		BaseFee:           txbuilder.MinBaseFee,
		LogLevel:          "info",
	}, dbConn, logger)
	if err != nil {
		log.Fatalf("failed to create forge: %v", err)
	}

	forged, err := forge.Build(models.BuildRequest{
		SourceAccount:  source.Address(),
		SequenceNumber: 2,
		Operations: []models.OperationRequest{
			{Type: "payment", Destination: destination.Address(), Amount: 10_0000000},
		},
	})
	if err != nil {
		log.Fatalf("failed to forge transaction: %v", err)
	}
	log.Printf("✅ Forged transaction %s", forged.Hash)

	// Clean up the healthcheck record
	if _, err := dbConn.Exec("DELETE FROM forged_transactions WHERE hash = $1", forged.Hash); err != nil {
		log.Printf("Warning: failed to clean up test transaction: %v", err)
	}

	log.Println("✅ Database operations successful!")
	log.Println("\n🎉 All checks passed! The forge is ready to run.")
}
