// Command token signs a bearer token for local development. The identity
// service issues tokens in every other environment.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Goutham009/tradewave-sub005/internal/domain/shared"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/auth"
	"github.com/Goutham009/tradewave-sub005/internal/infrastructure/config"
	"github.com/google/uuid"
)

func main() {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	flag.StringVar(&userID, "user", "", "User ID (default: a random uuid)")
	flag.StringVar(&role, "role", string(shared.RoleAdmin), "ADMIN, REVIEWER, BUYER or SUPPLIER")
	flag.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("failed to load configuration: %v", err)
	}
	if cfg.App.Env == "production" {
		fail("refusing to sign tokens in production")
	}
	if cfg.JWT.Secret == "" {
		fail("jwt.secret is not configured")
	}

	id := uuid.New()
	if userID != "" {
		if id, err = uuid.Parse(userID); err != nil {
			fail("invalid -user: %v", err)
		}
	}
	r := shared.Role(role)
	if !r.IsValid() || r == shared.RoleSystem {
		fail("invalid -role %q", role)
	}
	if ttl <= 0 || ttl > cfg.JWT.MaxTokenTTL {
		fail("-ttl must be positive and at most %s", cfg.JWT.MaxTokenTTL)
	}

	token, err := auth.Issue(cfg.JWT, shared.NewCaller(id, r), ttl, time.Now())
	if err != nil {
		fail("failed to sign token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "user %s role %s expires in %s\n", id, r, ttl)
	fmt.Println(token)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "token: "+format+"\n", args...)
	os.Exit(1)
}
