package main

import (
	"context"
	"log"
	"os"

	"recoverypilot/adapters/bolt"
	"recoverypilot/adapters/postgres"
	"recoverypilot/app"
	"recoverypilot/internal/migration"
	"recoverypilot/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// stateKeys are the records copied when importing a bolt file
var stateKeys = []string{app.KeyNewPatients, app.KeyPopulationStats, app.KeyCentroids}

func main() {
	godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	var boltPath string
	switch len(os.Args) {
	case 1:
	case 2:
		databaseURL = os.Args[1]
	case 3:
		databaseURL, boltPath = os.Args[1], os.Args[2]
	default:
		log.Fatal("Usage: migrate [database_url] [bolt_file_to_import]")
	}
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema at version %s", runner.Version())

	if boltPath == "" {
		return
	}

	source, err := bolt.NewKVStore(boltPath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", boltPath, err)
	}
	defer source.Close()

	copied, err := copyState(ctx, source, postgres.NewKVStore(db))
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Imported %d clustering records from %s", copied, boltPath)
}

func copyState(ctx context.Context, from, to ports.KVStore) (int, error) {
	copied := 0
	for _, key := range stateKeys {
		value, ok, err := from.Get(ctx, key)
		if err != nil {
			return copied, err
		}
		if !ok {
			continue
		}
		if err := to.Set(ctx, key, value); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}
