package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type SeedConfig struct {
	Users []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
	} `yaml:"users"`
	Items []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Available   bool   `yaml:"available"`
		OwnerEmail  string `yaml:"owner_email"`
	} `yaml:"items"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath   = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		configPath = flag.String("config", config.DefaultPath, "path to config.yaml")
	)
	flag.Parse()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}
	var seed SeedConfig
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewDB(ctx, cfg.Database, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	usersCreated := 0
	for _, u := range seed.Users {
		user := &models.User{Name: strings.TrimSpace(u.Name), Email: strings.TrimSpace(u.Email)}
		if user.Name == "" || user.Email == "" {
			continue
		}
		err = db.CreateUser(ctx, user)
		if errors.Is(err, database.ErrDuplicate) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create user %s: %w", user.Email, err)
		}
		usersCreated++
	}

	itemsCreated, itemsSkipped := 0, 0
	for _, it := range seed.Items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		owner, err := db.GetUserByEmail(ctx, it.OwnerEmail)
		if err != nil {
			return fmt.Errorf("owner %s of %s: %w", it.OwnerEmail, it.Name, err)
		}

		owned, err := db.GetItemsByOwner(ctx, owner.ID, 0, 1000)
		if err != nil {
			return fmt.Errorf("list items of %s: %w", it.OwnerEmail, err)
		}
		if hasItem(owned, it.Name) {
			itemsSkipped++
			continue
		}

		item := &models.Item{Name: it.Name, Description: it.Description, Available: it.Available, OwnerID: owner.ID}
		if err = db.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("create %s: %w", it.Name, err)
		}
		itemsCreated++
	}

	fmt.Printf("done: users=%d items=%d skipped=%d\n", usersCreated, itemsCreated, itemsSkipped)
	return nil
}

func hasItem(items []*models.Item, name string) bool {
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return true
		}
	}
	return false
}
