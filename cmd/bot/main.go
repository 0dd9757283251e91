package main

import (
	"errors"
	"log"

	"invitation-bot/internal/bot"
	"invitation-bot/internal/config"
	"invitation-bot/internal/database"
	"invitation-bot/internal/gatekeeper"
	"invitation-bot/internal/session"
	"invitation-bot/internal/store"
	"invitation-bot/internal/worker"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Open Database (creates file and schema if missing)
	db, err := database.ConnectSQLite(cfg.DBFile)
	if err != nil {
		log.Fatalf("Could not open database: %v", err)
	}

	st := store.New(db)

	// Seed the super admin once
	if err := st.ProvisionSuperAdmin(cfg.SuperAdminID); err != nil {
		if errors.Is(err, store.ErrAlreadyProvisioned) {
			log.Println("Super admin already provisioned")
		} else {
			log.Fatalf("Could not provision super admin: %v", err)
		}
	}

	// Pick session backend: Redis if configured, in-memory otherwise
	var sessions session.Store
	if cfg.RedisHost != "" {
		rdb, err := database.ConnectRedis(cfg)
		if err != nil {
			log.Fatalf("Could not connect to redis: %v", err)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		memory := session.NewMemoryStore()
		go worker.NewJanitor(memory, cfg.SessionTTL).Start()
		sessions = memory
	}

	gk := gatekeeper.New(st, sessions)

	b, err := bot.NewBot(cfg.BotToken, gk)
	if err != nil {
		log.Fatalf("Could not create bot: %v", err)
	}

	log.Println("Bot started")
	b.Start()
}
