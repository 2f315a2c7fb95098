// seed issues the first invite code so the site owner can create the
// initial admin account. The code has no creator.
// Run: go run ./cmd/seed [-days 7]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ErlanBelekov/portfolio/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/portfolio/internal/usecase"
)

func main() {
	days := flag.Int("days", usecase.DefaultInviteExpiryDays, "days until the code expires")
	flag.Parse()

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	invites := usecase.NewInviteUsecase(postgres.NewInviteRepository(pool, logger), logger)

	invite, err := invites.Create(ctx, "", *days)
	if err != nil {
		pool.Close()
		log.Fatalf("create invite code: %v", err)
	}

	pool.Close()

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Invite code: %s\n", invite.Code)
	fmt.Printf("  Expires at:  %s\n", invite.ExpiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Println("How to use:")
	fmt.Println()
	fmt.Println("  Sign up with the code to become the first admin:")
	fmt.Println()
	fmt.Println("    go run ./cmd/portfolioctl signup --email you@example.com --invite-code " + invite.Code)
	fmt.Println()
}
