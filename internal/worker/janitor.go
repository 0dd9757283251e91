package worker

import (
	"log"
	"time"

	"invitation-bot/internal/session"
)

// Janitor sweeps idle sessions out of the in-memory store, mirroring
// the eviction a conversation context would get from the platform. The
// Redis backend expires keys on its own and needs no janitor.
type Janitor struct {
	Sessions *session.MemoryStore
	TTL      time.Duration
}

func NewJanitor(sessions *session.MemoryStore, ttl time.Duration) *Janitor {
	return &Janitor{
		Sessions: sessions,
		TTL:      ttl,
	}
}

func (j *Janitor) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	log.Println("Background session janitor started")

	// Run once at start
	j.sweep()

	for range ticker.C {
		j.sweep()
	}
}

func (j *Janitor) sweep() {
	if evicted := j.Sessions.EvictIdle(j.TTL); evicted > 0 {
		log.Printf("Evicted %d idle sessions", evicted)
	}
}
