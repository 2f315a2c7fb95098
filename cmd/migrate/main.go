// migrate applies or rolls back the embedded schema migrations.
// Run: go run ./cmd/migrate up|down [n]|version|force <version>
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ErlanBelekov/portfolio/internal/infrastructure/postgres"
	"github.com/golang-migrate/migrate/v4"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	m, err := postgres.NewMigrator(dbURL)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	defer m.Close()

	switch cmd := os.Args[1]; cmd {
	case "up":
		err = m.Up()
	case "down":
		n := 1
		if len(os.Args) > 2 {
			if n, err = strconv.Atoi(os.Args[2]); err != nil || n < 1 {
				log.Fatalf("down: step count must be a positive integer")
			}
		}
		err = m.Steps(-n)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			log.Fatalf("version: %v", verr)
		}
		fmt.Printf("version %d (dirty=%t)\n", v, dirty)
		return
	case "force":
		if len(os.Args) < 3 {
			usage()
		}
		v, perr := strconv.Atoi(os.Args[2])
		if perr != nil {
			log.Fatalf("force: version must be an integer")
		}
		err = m.Force(v)
	default:
		usage()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no change")
		return
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}

	v, dirty, _ := m.Version()
	fmt.Printf("ok, now at version %d (dirty=%t)\n", v, dirty)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate up | down [n] | version | force <version>")
	os.Exit(2)
}
