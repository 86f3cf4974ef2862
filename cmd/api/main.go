package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/illusio-designs/goldline-backend/internal/catalog"
	"github.com/illusio-designs/goldline-backend/internal/config"
	"github.com/illusio-designs/goldline-backend/internal/httpx"
	kafkax "github.com/illusio-designs/goldline-backend/internal/kafka"
	"github.com/illusio-designs/goldline-backend/internal/notify"
	"github.com/illusio-designs/goldline-backend/internal/orders"
	"github.com/illusio-designs/goldline-backend/internal/postgres"
	"github.com/illusio-designs/goldline-backend/internal/realtime"
	"github.com/illusio-designs/goldline-backend/internal/redisx"
	"github.com/illusio-designs/goldline-backend/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	orderProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderEvents, 1024)
	orderProd.Start(ctx)
	userProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicUserEvents, 1024)
	userProd.Start(ctx)

	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	cartRepo := &orders.CartRepo{DB: db}
	userRepo := &users.Repo{DB: db}
	svc := &orders.Service{Products: catalogRepo, Orders: orderRepo, Cart: cartRepo}
	rt := realtime.NewPublisher(rdb)

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{
		Svc:      svc,
		Repo:     orderRepo,
		Users:    userRepo,
		Producer: orderProd,
		Realtime: rt,
		Service:  cfg.ServiceName,
	}).Register(router)
	(&httpx.CartHandler{Repo: cartRepo, Realtime: rt}).Register(router)
	(&httpx.ProductsHandler{Repo: catalogRepo, Realtime: rt}).Register(router)
	(&httpx.UsersHandler{
		Repo:     userRepo,
		Producer: userProd,
		Realtime: rt,
		Service:  cfg.ServiceName,
	}).Register(router)
	(&httpx.NotificationsHandler{
		Tokens:        &notify.TokenRepo{DB: db},
		Notifications: &notify.NotificationRepo{DB: db},
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	orderProd.Close()
	userProd.Close()
	cancel()
	orderProd.WaitClosed()
	userProd.WaitClosed()
}
