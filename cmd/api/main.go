package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/config"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-lodging-reservations.git/internal/kafka"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/memstore"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/notify"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/payments"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/postgres"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/redisx"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/sweeper"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logx.Init(cfg.ServiceName)
	if err := cfg.Validate(); err != nil {
		logx.Logger.Fatalf("config: %v", err)
	}
	loc, _ := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := &booking.Service{
		Payments:         payments.NewMock(),
		Clock:            booking.RealClock{},
		Location:         loc,
		CancelWindowDays: cfg.CancelWindowDays,
	}
	handler := &httpx.ReservationsHandler{Bookings: svc}
	var producers []*kafkax.Producer

	switch cfg.Store {
	case config.StoreMemory:
		units := memstore.NewUnits()
		if cfg.UnitsFile != "" {
			var err error
			if units, err = memstore.LoadUnits(cfg.UnitsFile); err != nil {
				logx.Logger.Fatalf("units: %v", err)
			}
		}
		svc.Store = memstore.New()
		svc.Units = units
		svc.Reviews = memstore.NewReviews()
		svc.Notifier = notify.LogNotifier{}

	default:
		// DB
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, 0)
		if err != nil {
			logx.Logger.Fatalf("db connect: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			logx.Logger.Fatalf("migrate: %v", err)
		}
		svc.Store = postgres.NewReservationStore(db)
		svc.Units = &postgres.UnitDirectory{DB: db}
		svc.Reviews = &postgres.ReviewLookup{DB: db}

		// Redis
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		cache := redisx.NewCache(rdb)
		handler.Cache = cache

		// Kafka producer per topic
		kn := &notify.KafkaNotifier{Publishers: map[string]notify.Publisher{}, Producer: cfg.ServiceName}
		for _, topic := range notify.Topics() {
			p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024)
			p.Start(ctx)
			producers = append(producers, p)
			kn.Publishers[topic] = p
		}
		svc.Notifier = notify.Multi{kn, cache}
	}

	sw := sweeper.New(svc, cfg.SweepWorkers)
	handler.Sweeper = sw
	if cfg.Store == config.StoreMemory {
		// cmd/sweeper cannot see this process's memory, so sweep in-process
		if err := sw.Start(ctx, cfg.SweepSchedule); err != nil {
			logx.Logger.Fatalf("sweeper: %v", err)
		}
		defer sw.Stop()
	}

	router := httpx.NewRouter()
	handler.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		logx.Logger.Infof("HTTP listening at %s (store=%s)", cfg.HTTPAddr, cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Logger.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logx.Logger.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // tutup inbox -> flush & close writer
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	cancel()
}
