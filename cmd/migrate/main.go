package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"    // PostgreSQL driver
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"github.com/pressly/goose/v3"

	"github.com/profacthq/profact-api/migrations"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("failed to open database connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if len(os.Args) < 2 {
		log.Fatalf("missing goose command. Usage: go run ./cmd/migrate [up|down|status|...]")
	}
	command := os.Args[1]
	args := os.Args[2:]

	log.Printf("running goose command: %s", command)
	if err := goose.RunContext(context.Background(), command, db, ".", args...); err != nil {
		log.Fatalf("goose command %q failed: %v", command, err)
	}
}
