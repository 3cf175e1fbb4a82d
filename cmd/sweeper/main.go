package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/config"
	kafkax "github.com/ariefcatur/go-lodging-reservations.git/internal/kafka"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/notify"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/postgres"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/redisx"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/sweeper"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logx.Init(cfg.ServiceName + "-sweeper")
	if err := cfg.Validate(); err != nil {
		logx.Logger.Fatalf("config: %v", err)
	}
	if cfg.Store != config.StorePostgres {
		logx.Logger.Fatal("sweeper needs STORE=postgres; memory runs sweep inside the api")
	}
	loc, _ := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 4)
	if err != nil {
		logx.Logger.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewCache(rdb)

	// completed events only
	prod := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicReservationCompleted, 1024)
	prod.Start(ctx)

	svc := &booking.Service{
		Store:    postgres.NewReservationStore(db),
		Units:    &postgres.UnitDirectory{DB: db},
		Clock:    booking.RealClock{},
		Location: loc,
		Notifier: notify.Multi{
			&notify.KafkaNotifier{
				Publishers: map[string]notify.Publisher{notify.TopicReservationCompleted: prod},
				Producer:   cfg.ServiceName + "-sweeper",
			},
			cache,
		},
	}

	sw := sweeper.New(svc, cfg.SweepWorkers)
	if _, err := sw.RunOnce(ctx); err != nil {
		logx.Logger.WithError(err).Error("initial sweep failed")
	}
	if err := sw.Start(ctx, cfg.SweepSchedule); err != nil {
		logx.Logger.Fatalf("sweeper: %v", err)
	}
	logx.Logger.Infof("sweeper started: schedule=%q workers=%d", cfg.SweepSchedule, cfg.SweepWorkers)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logx.Logger.Info("shutting down sweeper...")
	sw.Stop()
	prod.Close()
	prod.WaitClosed()
	cancel()
}
