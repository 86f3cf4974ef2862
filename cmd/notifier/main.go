package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/illusio-designs/goldline-backend/internal/config"
	kafkax "github.com/illusio-designs/goldline-backend/internal/kafka"
	"github.com/illusio-designs/goldline-backend/internal/notify"
	"github.com/illusio-designs/goldline-backend/internal/orders"
	"github.com/illusio-designs/goldline-backend/internal/postgres"
	"github.com/illusio-designs/goldline-backend/internal/push"
	"github.com/illusio-designs/goldline-backend/internal/realtime"
	"github.com/illusio-designs/goldline-backend/internal/redisx"
)

func newSender(ctx context.Context, credentialsFile string) push.Sender {
	if credentialsFile == "" {
		log.Println("no firebase credentials configured, push runs dry")
		return push.LogSender{}
	}
	s, err := push.NewFCMSender(ctx, credentialsFile)
	if err != nil {
		log.Fatalf("fcm init: %v", err)
	}
	return s
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Tokens:        &notify.TokenRepo{DB: db},
		Notifications: &notify.NotificationRepo{DB: db},
		Pusher:        newSender(ctx, cfg.FirebaseCredentialsFile),
		Realtime:      realtime.NewPublisher(rdb),
	}
	router := &notify.Router{
		Svc:         svc,
		AdminUserID: cfg.AdminUserID,
		Seen: func(ctx context.Context, eventID string) (bool, error) {
			return redisx.MarkEventSeen(ctx, rdb, eventID)
		},
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "8")
	topics := []string{orders.TopicOrderEvents, orders.TopicUserEvents}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topics, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topics=%v workers=%d", group, topics, workers)
		if err := cons.Start(ctx, router.Handle); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down consumer...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
