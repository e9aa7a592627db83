package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gin-gonic/gin"

	"github.com/guttosm/dipwatch/config"
	"github.com/guttosm/dipwatch/internal/api"
	"github.com/guttosm/dipwatch/internal/archive"
	"github.com/guttosm/dipwatch/internal/dip"
	"github.com/guttosm/dipwatch/internal/job"
	"github.com/guttosm/dipwatch/internal/logger"
	"github.com/guttosm/dipwatch/internal/market"
	"github.com/guttosm/dipwatch/internal/notify"
	"github.com/guttosm/dipwatch/internal/storage"
)

// loadAWSConfig resolves credentials and region for the SES and S3 clients.
// Overridden in tests.
var loadAWSConfig = func(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

// migrator applies the archive schema once the postgres pool is open.
var migrator = storage.Migrate

// Runtime is the wired Job together with the connections it keeps open.
type Runtime struct {
	Job *job.Job

	aws     *aws.Config
	ping    func() error
	closers []func() error
}

// NewRuntime builds every collaborator selected by cfg and returns the Job
// that drives them.
//
// Behavior:
//   - Notifier: ses, webhook, kafka or log (NOTIFY_BACKEND).
//   - Archiver: s3, postgres, redis or none (ARCHIVE_BACKEND); none leaves the
//     Job without an archiver.
//   - Price data always comes from the Yahoo client configured by MARKET_*.
//   - On error, anything already opened is closed before returning.
func NewRuntime(ctx context.Context, cfg config.Config) (*Runtime, error) {
	loc, err := cfg.Dip.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Dip.Timezone, err)
	}

	rt := &Runtime{}

	notifier, err := rt.newNotifier(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	archiver, err := rt.newArchiver(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}

	source := market.NewYahooClient(cfg.Market.BaseURL, cfg.Market.UserAgent, cfg.Market.Timeout)
	evaluator := dip.NewEvaluator(source, cfg.Dip.Parallel)

	rt.Job = job.New(job.Settings{
		Tickers:    cfg.Dip.Tickers,
		Threshold:  cfg.Dip.Threshold,
		Location:   loc,
		Sender:     cfg.Email.Sender,
		Recipients: cfg.Email.Recipients,
		Container:  cfg.Archive.Container,
	}, evaluator, notifier, archiver)

	log := logger.With("app")
	log.Info().
		Strs("tickers", cfg.Dip.Tickers).
		Float64("threshold", cfg.Dip.Threshold).
		Str("notify", cfg.Notify.Backend).
		Str("archive", cfg.Archive.Backend).
		Msg("runtime ready")

	return rt, nil
}

// Ping checks the archive backend. Backends without a connection are always ready.
func (r *Runtime) Ping() error {
	if r.ping == nil {
		return nil
	}
	return r.ping()
}

// Close releases connections in reverse order of creation.
func (r *Runtime) Close() {
	log := logger.With("app")
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	r.closers = nil
}

func (r *Runtime) awsConfig(ctx context.Context, region string) (aws.Config, error) {
	if r.aws != nil {
		return *r.aws, nil
	}
	c, err := loadAWSConfig(ctx, region)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	r.aws = &c
	return c, nil
}

func (r *Runtime) newNotifier(ctx context.Context, cfg config.Config) (notify.Notifier, error) {
	switch cfg.Notify.Backend {
	case "ses":
		awsCfg, err := r.awsConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return notify.NewSES(sesv2.NewFromConfig(awsCfg)), nil
	case "webhook":
		return notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.WebhookName), nil
	case "kafka":
		w := notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		r.closers = append(r.closers, w.Close)
		return notify.NewKafka(w), nil
	case "log":
		return notify.NewLog(), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Notify.Backend)
	}
}

func (r *Runtime) newArchiver(ctx context.Context, cfg config.Config) (archive.Archiver, error) {
	switch cfg.Archive.Backend {
	case "none", "":
		return nil, nil
	case "s3":
		awsCfg, err := r.awsConfig(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		return archive.NewS3(s3.NewFromConfig(awsCfg)), nil
	case "postgres":
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		r.closers = append(r.closers, db.Close)
		if err := migrator(db); err != nil {
			return nil, err
		}
		r.ping = db.Ping
		return storage.NewArchiveRepository(db), nil
	case "redis":
		client, err := redisOpener(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a := archive.NewRedis(client)
		r.closers = append(r.closers, a.Close)
		r.ping = a.Ping
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.Archive.Backend)
	}
}

// InitializeApp sets up the HTTP surface around a Runtime.
//
// Responsibilities:
//   - Builds the Runtime (notifier, archiver, price source, job).
//   - Creates the handler layer and the Gin router with all API routes.
//   - Registers health and readiness probes; readiness pings the archive backend.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp(ctx context.Context, cfg config.Config) (*gin.Engine, func(), error) {
	rt, err := NewRuntime(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router := api.NewRouter(api.NewHandler(rt.Job))
	api.NewHealthHandler(cfg.Archive.Backend, rt.Ping).Register(router)

	return router, rt.Close, nil
}
