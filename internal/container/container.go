package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/library-catalog/config"
	"github.com/oksasatya/library-catalog/internal/application"
	"github.com/oksasatya/library-catalog/internal/domain/entity"
	"github.com/oksasatya/library-catalog/internal/domain/repository"
	"github.com/oksasatya/library-catalog/internal/infrastructure/cache"
	"github.com/oksasatya/library-catalog/internal/infrastructure/memory"
	"github.com/oksasatya/library-catalog/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/library-catalog/internal/infrastructure/postgres"
	"github.com/oksasatya/library-catalog/internal/infrastructure/search"
	coverstore "github.com/oksasatya/library-catalog/internal/infrastructure/storage"
	"github.com/oksasatya/library-catalog/pkg/helpers"
)

// Container holds the components constructed at startup. Router modules and
// binaries read from it; nothing is stored in package globals.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager

	Users repository.UserRepository
	Books repository.BookRepository
	Store repository.Pinger

	Redis     *redis.Client
	ES        *elasticsearch.Client
	GCS       *storage.Client
	RabbitPub *helpers.RabbitPublisher

	AuthService *application.AuthService
	BookService *application.BookService

	closers []func()
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Users repository.UserRepository
	Books repository.BookRepository
	Store repository.Pinger
}

// MemoryStores returns a fresh in-process backend.
func MemoryStores() Stores {
	books := memory.NewBookRepository()
	return Stores{Users: memory.NewUserRepository(), Books: books, Store: books}
}

// New opens the configured store and the optional integrations, then wires
// the services. Optional integrations that fail to start are logged and
// left disabled.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	stores, err := c.openStores(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	if cfg.RedisAddr != "" {
		rdb, err := helpers.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, book cache disabled")
		} else {
			c.Redis = rdb
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	switch {
	case err != nil:
		logger.WithError(err).Warn("elasticsearch misconfigured, search uses the store")
	case es != nil:
		if err := search.NewBookIndex(es, cfg.ESBooksIndex).EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, search uses the store")
		} else {
			c.ES = es
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("gcs unavailable, cover uploads disabled")
		} else {
			c.GCS = gcs
			c.closers = append(c.closers, func() { _ = gcs.Close() })
		}
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, welcome emails disabled")
		} else {
			c.RabbitPub = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	if err := c.wire(stores); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// NewWithStores wires services over the given stores with no optional
// integrations.
func NewWithStores(cfg *config.Config, logger *logrus.Logger, stores Stores) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	if err := c.wire(stores); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) openStores(ctx context.Context) (Stores, error) {
	cfg := c.Config
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return Stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, c.Logger); err != nil {
			return Stores{}, fmt.Errorf("migrate: %w", err)
		}
		return Stores{
			Users: pginfra.NewUserRepository(pool),
			Books: pginfra.NewBookRepository(pool),
			Store: pool,
		}, nil
	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return Stores{}, err
		}
		c.closers = append(c.closers, func() { _ = client.Disconnect(context.Background()) })
		db := client.Database(cfg.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return Stores{}, err
		}
		return Stores{
			Users: mongodb.NewUserRepository(db),
			Books: mongodb.NewBookRepository(db),
			Store: mongodb.Pinger{Client: client},
		}, nil
	case config.DriverMemory:
		c.Logger.Warn("using in-memory store, data is lost on restart")
		return MemoryStores(), nil
	default:
		return Stores{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func (c *Container) wire(stores Stores) error {
	jwtm, err := helpers.NewJWTManager(c.Config.JWTSecret, c.Config.JWTTTL)
	if err != nil {
		return err
	}
	c.JWT = jwtm
	c.Users, c.Books, c.Store = stores.Users, stores.Books, stores.Store

	var mail application.EmailPublisher
	if c.RabbitPub != nil {
		mail = c.RabbitPub
	}
	c.AuthService = application.NewAuthService(c.Users, helpers.BcryptHasher{}, jwtm, mail, c.Logger)
	c.AuthService.AppName = c.Config.AppName

	books := application.NewBookService(c.Books, c.Logger)
	if c.Redis != nil {
		books.Cache = cache.NewBookCache(c.Redis, c.Config.BookCacheTTL)
	}
	if c.ES != nil {
		books.Index = search.NewBookIndex(c.ES, c.Config.ESBooksIndex)
	}
	if c.GCS != nil {
		books.Covers = coverstore.NewCoverStorage(c.GCS, c.Config.GCSBucket)
	}
	c.BookService = books
	return nil
}

// SeedAdmin ensures the bootstrap admin from SEED_ADMIN_* exists. With no
// SEED_ADMIN_EMAIL it does nothing and returns a nil user.
func (c *Container) SeedAdmin(ctx context.Context) (*entity.User, bool, error) {
	if c.Config.SeedAdminEmail == "" {
		return nil, false, nil
	}
	u, created, err := c.AuthService.EnsureAdmin(ctx, application.RegisterInput{
		Name:     c.Config.SeedAdminName,
		Email:    c.Config.SeedAdminEmail,
		Password: c.Config.SeedAdminPassword,
	})
	if err != nil {
		return nil, false, fmt.Errorf("seed admin %s: %w", c.Config.SeedAdminEmail, err)
	}
	c.Logger.WithFields(logrus.Fields{"user_id": u.ID, "created": created}).Info("bootstrap admin ready")
	return u, created, nil
}

// Close releases connections in reverse order of opening.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
