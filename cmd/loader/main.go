package main

import (
	"context"
	"log"
	"time"

	"eatery/internal/config"
	"eatery/internal/env"
	"eatery/internal/keys"
	internalmodels "eatery/internal/models"
	"eatery/internal/service"
	"eatery/internal/storage"
	"eatery/pkg/graceful"
	"eatery/pkg/kafkaclient"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Fatalf("Error loading .env file: %v", err)
	}
	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL: ", config.ErrMissing)
	}

	log.Printf("Connecting to Kafka broker: %s on topic: %s with group ID: %s", cfg.Kafka.Broker, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	consumer, err := kafkaclient.NewKafkaConsumer(cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.Broker)
	if err != nil {
		log.Fatalf("Failed to create kafka consumer %v", err)
	}

	store, err := storage.NewResultStore(cfg.MinIO)
	if err != nil {
		log.Fatal(err)
	}
	db, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := db.InitSchema(ctx); err != nil {
		log.Fatal(err)
	}

	consumer.StartConsuming(ctx)
	iterator := service.NewIterator[*internalmodels.MergedTable](consumer, store.GetTable, keys.IsTable)
	loaded := 0
	queries := make(map[string]bool)
	for obj := range iterator.Objects(ctx) {
		if err := db.SaveTable(ctx, *obj.Data); err != nil {
			// left uncommitted so it is delivered again
			log.Printf("Error saving %q: %v", obj.Key, err)
			continue
		}
		if err := iterator.Commit(ctx, obj); err != nil {
			log.Printf("Failed to commit offset: %v", err)
		}
		loaded++
		queries[obj.Data.Query] = true
	}

	consumer.Stop()
	logCounts(db, queries)
	log.Printf("Loaded %d tables, application exiting.", loaded)
}

// logCounts reports the stored candidates per query loaded this run. ctx is
// already canceled on shutdown, so it gets its own deadline.
func logCounts(db *storage.Postgres, queries map[string]bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for query := range queries {
		n, err := db.CountRows(ctx, query)
		if err != nil {
			log.Printf("Error counting rows for %q: %v", query, err)
			continue
		}
		log.Printf("Query %q has %d stored candidates", query, n)
	}
}
