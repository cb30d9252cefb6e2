package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"admissions/internal/account"
	"admissions/internal/config"
	"admissions/internal/queue"
	"admissions/internal/store"
)

// Worker consumes queue messages and dispatches applicant notifications.
// Delivery is a log line for now; swapping in a mail client only touches
// the switch below.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "admissions:notifications")
	}

	repo := account.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		id := string(msg.Body)

		acct, err := repo.FindByID(ctx, id)
		if err != nil {
			log.Printf("fetch account %s failed: %v", id, err)
			continue
		}
		if acct == nil {
			log.Printf("account %s no longer exists, skipping", id)
			continue
		}

		switch msg.Type {
		case queue.TypeRegistered:
			log.Printf("new application: %s <%s> (role=%s, status=%s)", acct.FullName, acct.Email, acct.Role, acct.Status)

		case queue.TypeStatusChanged:
			log.Printf("notifying %s <%s>: application %s", acct.FullName, acct.Email, acct.Status)
			if err := repo.MarkNotified(ctx, id); err != nil {
				log.Printf("mark notified %s failed: %v", id, err)
			}

		default:
			log.Printf("unknown message type %q, skipping", msg.Type)
		}
	}

	log.Println("worker stopped")
}
