package main

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/jerseyx-backend/internal/config"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/order"
	"github.com/georgemunganga/jerseyx-backend/internal/storage"
)

// backends are the process-wide connections selected by configuration.
type backends struct {
	durable storage.DurableStore
	session storage.SessionStore
	db      *sqlx.DB
	events  order.Dispatchers
	closers []func() error
}

func (b *backends) Close(logger log.FieldLogger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			logger.WithError(err).Warn("closing backend")
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config, logger log.FieldLogger) (*backends, error) {
	b := &backends{events: order.Dispatchers{order.LogDispatcher{Logger: logger}}}

	if cfg.DurableBackend == config.BackendPostgres || cfg.CatalogFeed {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "connecting to postgres")
		}
		b.db = db
		b.closers = append(b.closers, db.Close)
		logger.Info("connected to postgres")
	}

	var rdb *redis.Client
	if cfg.DurableBackend == config.BackendRedis || cfg.SessionBackend == config.BackendRedis {
		rdb = storage.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			b.Close(logger)
			return nil, errors.Wrap(err, "pinging redis")
		}
		b.closers = append(b.closers, rdb.Close)
		logger.Info("connected to redis")
	}

	switch cfg.DurableBackend {
	case config.BackendPostgres:
		b.durable = storage.NewPostgres(b.db)
	case config.BackendRedis:
		b.durable = storage.NewRedis(rdb, 0)
	case config.BackendMongo:
		client, err := storage.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			b.Close(logger)
			return nil, err
		}
		b.closers = append(b.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(ctx)
		})
		b.durable = storage.NewMongo(client.Database(cfg.MongoDatabase).Collection("kv_store"))
		logger.Info("connected to mongodb")
	default:
		b.durable = storage.NewMemory()
	}

	if cfg.SessionBackend == config.BackendRedis {
		b.session = storage.NewRedis(rdb, cfg.SessionTTL)
	} else {
		b.session = storage.NewMemory()
	}

	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			b.Close(logger)
			return nil, errors.Wrap(err, "connecting to rabbitmq")
		}
		b.closers = append(b.closers, conn.Close)
		pub, err := order.NewAMQPPublisher(conn, cfg.OrderExchange)
		if err != nil {
			b.Close(logger)
			return nil, err
		}
		b.closers = append(b.closers, pub.Close)
		b.events = append(b.events, pub)
		logger.WithField("exchange", cfg.OrderExchange).Info("publishing order events")
	}
	return b, nil
}
