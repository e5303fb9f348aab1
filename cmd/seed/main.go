package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mlarcade/internal/questionbank"
	"mlarcade/internal/repository"
)

// Seeds the embedded question catalog into MongoDB so the server can run
// with CATALOG_SOURCE=mongo.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "mlarcade"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	questions, err := questionbank.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load embedded catalog: %v", err)
	}

	catalogRepo := repository.NewCatalogRepo(client.Database(mongoDB))
	if err := catalogRepo.ReplaceAll(ctx, questions); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Printf("Successfully seeded %d questions into %s.questions\n", len(questions), mongoDB)
}
