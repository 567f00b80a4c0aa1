// Command adduser creates an account directly in the configured store. It is
// how the first admin gets in, since the API only lets admins create users.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cfq/wod-board/internal/config"
	"cfq/wod-board/internal/domain"
	"cfq/wod-board/internal/logging"
	"cfq/wod-board/internal/repository/driver"
	"cfq/wod-board/internal/service"
	"cfq/wod-board/internal/session"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.yaml")
	name := flag.String("name", "", "display name")
	email := flag.String("email", "", "login email")
	password := flag.String("password", "", "password, at least 8 characters")
	role := flag.String("role", string(domain.RoleMember), "admin or member")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	logging.Setup(logging.SetupParams{LogLevel: cfg.Log.Level, LogToStdout: true})

	user, err := run(cfg, *name, *email, *password, domain.Role(*role))
	if err != nil {
		fmt.Fprintf(os.Stderr, "adduser: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
}

func run(cfg config.Config, name, email, password string, role domain.Role) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, closeStore, err := driver.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Errorf("close store: %s", err)
		}
	}()

	sessions := session.NewManager(cfg.JWT.Secret, cfg.JWT.Expiration, nil)
	return service.NewAuthService(store.Users, sessions).Register(ctx, name, email, password, role)
}
