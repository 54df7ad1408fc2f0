package initializers

import (
	"context"
	"log"

	"github.com/Kariqs/camiu-api/events"
	"github.com/Kariqs/camiu-api/payments"
	"github.com/Kariqs/camiu-api/sessions"
	"github.com/Kariqs/camiu-api/storage"
	"github.com/Kariqs/camiu-api/utils"
)

// App holds the dependencies shared by every handler. Optional integrations
// (Uploader, Payments, Mailer) are nil when not configured.
type App struct {
	Config   *Config
	Store    storage.Storage
	Sessions sessions.Store
	Tokens   *sessions.Signer
	Uploader utils.Uploader
	Payments payments.Gateway
	Events   events.Publisher
	Feed     *events.Hub
	Mailer   *utils.Mailer
}

// Setup builds the App from cfg. The returned cleanup closes every
// connection that was opened.
func Setup(ctx context.Context, cfg *Config) (*App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	app := &App{Config: cfg, Tokens: sessions.NewSigner(cfg.SessionSecret)}

	var store storage.Storage
	if cfg.DBDriver == "memory" {
		store = storage.NewMemoryStore()
		log.Println("Using in-memory storage.")
	} else {
		db, err := ConnectToDB(cfg)
		if err != nil {
			return nil, cleanup, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { sqlDB.Close() })
		}
		if err := SyncDatabase(db); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		store = storage.NewGormStore(db)
	}

	if cfg.RedisURL != "" {
		rdb, err := ConnectRedis(ctx, cfg)
		if err != nil {
			log.Printf("Redis unavailable, catalog cache disabled: %v", err)
		} else {
			closers = append(closers, func() { rdb.Close() })
			store = storage.NewCachedStore(store, rdb, cfg.CacheTTL)
			log.Println("Catalog cache enabled.")
		}
	}
	app.Store = store

	switch cfg.SessionDriver {
	case "postgres":
		pool, err := ConnectSessionPool(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, pool.Close)
		pg := sessions.NewPGStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		pruneCtx, stop := context.WithCancel(context.Background())
		closers = append(closers, stop)
		pg.StartPruning(pruneCtx, sessions.DefaultPruneInterval)
		app.Sessions = pg
	default:
		mem := sessions.NewMemoryStore()
		pruneCtx, stop := context.WithCancel(context.Background())
		closers = append(closers, stop)
		mem.StartPruning(pruneCtx, sessions.DefaultPruneInterval)
		app.Sessions = mem
	}

	app.Feed = events.NewHub(cfg.CORSOrigins)
	publishers := events.Multi{app.Feed}
	if cfg.OrderWebhookURL != "" {
		publishers = append(publishers, events.NewWebhookPublisher(cfg.OrderWebhookURL))
	}
	app.Events = publishers

	if cfg.S3Bucket != "" {
		uploader, err := utils.NewS3Uploader(ctx, cfg.S3Bucket)
		if err != nil {
			log.Printf("S3 uploads disabled: %v", err)
		} else {
			app.Uploader = uploader
		}
	}

	if cfg.StripeSecretKey != "" {
		app.Payments = payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeCurrency)
	}

	if cfg.Mail.From != "" && cfg.Mail.SMTPAddress != "" {
		app.Mailer = utils.NewMailer(cfg.Mail)
	}

	if cfg.SeedSampleData {
		if err := SeedSampleData(ctx, app.Store); err != nil {
			log.Printf("Failed to initialize sample data: %v", err)
		}
	}

	return app, cleanup, nil
}
