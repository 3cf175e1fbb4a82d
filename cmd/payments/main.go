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
	"github.com/ariefcatur/go-lodging-reservations.git/internal/payments"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/postgres"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/redisx"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	name := cfg.ServiceName + "-payments"
	logx.Init(name)
	if err := cfg.Validate(); err != nil {
		logx.Logger.Fatalf("config: %v", err)
	}
	loc, _ := cfg.Location()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 0)
	if err != nil {
		logx.Logger.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	cache := redisx.NewCache(rdb)

	// Producers: confirmed & rejected (dua topic berbeda)
	pOK := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicReservationConfirmed, 1024)
	pOK.Start(ctx)
	pRJ := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicPaymentRejected, 1024)
	pRJ.Start(ctx)

	svc := &booking.Service{
		Store:    postgres.NewReservationStore(db),
		Units:    &postgres.UnitDirectory{DB: db},
		Clock:    booking.RealClock{},
		Location: loc,
		Notifier: notify.Multi{
			&notify.KafkaNotifier{
				Publishers: map[string]notify.Publisher{
					notify.TopicReservationConfirmed: pOK,
					notify.TopicPaymentRejected:      pRJ,
				},
				Producer: name,
			},
			cache,
		},
	}
	h := &payments.ResultHandler{Bookings: svc, Dedup: cache, ServiceName: name}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.PaymentGroup, payments.TopicPaymentResult, cfg.PaymentWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		logx.Logger.Infof("payment consumer started: group=%s topic=%s workers=%d", cfg.PaymentGroup, payments.TopicPaymentResult, cfg.PaymentWorkers)
		if err := cons.Start(ctx, h.HandlePaymentResult); err != nil {
			logx.Logger.WithError(err).Error("consumer exit")
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logx.Logger.Info("shutting down consumer...")
	cancel()
	<-done
	pOK.Close()
	pRJ.Close()
	pOK.WaitClosed()
	pRJ.WaitClosed()
}
