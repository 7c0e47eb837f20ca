package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"scholarforge/internal/ai"
	appsvc "scholarforge/internal/app"
	"scholarforge/internal/cache"
	"scholarforge/internal/compress"
	"scholarforge/internal/config"
	"scholarforge/internal/logging"
	"scholarforge/internal/model"
	mysqlClient "scholarforge/internal/platform/mysql"
	rabbitmqClient "scholarforge/internal/platform/rabbitmq"
	redisClient "scholarforge/internal/platform/redis"
	"scholarforge/internal/repository"
	"scholarforge/internal/storage"
	"scholarforge/internal/worker"
)

type Services struct {
	Auth        *appsvc.AuthService
	Profile     *appsvc.ProfileService
	Drafts      *appsvc.DraftService
	Panels      *appsvc.PanelService
	Generator   *appsvc.GeneratorService
	Compression *appsvc.CompressionService
	FieldTrip   *appsvc.FieldTripService
	Community   *appsvc.CommunityService
}

type App struct {
	Config         *config.Config
	Logger         *zap.Logger
	MySQL          *gorm.DB
	Redis          *redis.Client
	MQConn         *amqp.Connection
	Storage        storage.Storage
	Generator      ai.Generator
	Services       *Services
	CompressWorker *worker.CompressWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, err
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQL, logger)
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.Draft{},
		&model.PanelState{},
		&model.FieldTable{},
		&model.FieldObservation{},
		&model.CompressedFile{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage failed: %w", err)
	}

	gen, err := newGenerator(ctx, cfg)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn("ai provider not configured, generation endpoints will return 503",
			zap.String("provider", cfg.LLM.Provider))
	case err != nil:
		return nil, err
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		Storage:   store,
		Generator: gen,
		StartedAt: time.Now(),
	}
	a.Services = newServices(a)

	if mqConn != nil {
		a.CompressWorker = worker.NewCompressWorker(mqConn, a.Services.Compression, cfg.RabbitMQ.CompressQueue, logger)
		if err := a.CompressWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start compress worker failed: %w", err)
		}
	}

	logger.Info("bootstrap complete",
		zap.String("env", cfg.App.Env),
		zap.String("storage", cfg.Storage.Type),
		zap.Bool("ai", gen != nil),
		zap.Bool("panel_cache", redisCli != nil),
		zap.Bool("async_compress", mqConn != nil),
	)
	return a, nil
}

func newServices(a *App) *Services {
	cfg := a.Config
	userRepo := repository.NewUserRepository(a.MySQL)
	compressor := NewCompressor(cfg.Compressor)

	// left as nil interfaces when the backing service is disabled
	var panelCache appsvc.PanelCache
	if a.Redis != nil {
		panelCache = cache.NewPanelCache(a.Redis, time.Duration(cfg.Redis.PanelTTLSeconds)*time.Second)
	}
	var publisher appsvc.CompressJobPublisher
	if a.MQConn != nil {
		publisher = rabbitmqClient.NewJobPublisher(a.MQConn, cfg.RabbitMQ.CompressQueue)
	}

	drafts := appsvc.NewDraftService(repository.NewDraftRepository(a.MySQL), cfg.Drafts.HistoryLimit)
	panels := appsvc.NewPanelService(repository.NewPanelStateRepository(a.MySQL), panelCache, a.Logger)
	compression := appsvc.NewCompressionService(
		repository.NewFileRepository(a.MySQL),
		a.Storage,
		compressor,
		publisher,
		int64(cfg.Compressor.MaxUploadMB)<<20,
		time.Duration(cfg.Compressor.TimeoutSeconds)*time.Second,
		a.Logger,
	)
	fieldTrip := appsvc.NewFieldTripService(
		repository.NewFieldTableRepository(a.MySQL),
		repository.NewObservationRepository(a.MySQL),
		a.Storage,
		compressor,
		int64(cfg.Compressor.PhotoTargetKB)*1024,
		a.Logger,
	)
	community := appsvc.NewCommunityService(time.Now)

	return &Services{
		Auth: appsvc.NewAuthService(
			userRepo,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
		),
		Profile:     appsvc.NewProfileService(userRepo, a.Logger, drafts, panels, compression, fieldTrip, community),
		Drafts:      drafts,
		Panels:      panels,
		Generator:   appsvc.NewGeneratorService(a.Generator, cfg.LLMTimeout(), cfg.Gemini.ThinkingBudget, a.Logger),
		Compression: compression,
		FieldTrip:   fieldTrip,
		Community:   community,
	}
}

// NewCompressor maps the compressor config onto the search options.
func NewCompressor(cfg config.CompressorConfig) *compress.Compressor {
	return compress.New(compress.Options{
		MaxWidth:      cfg.MaxWidth,
		MaxIterations: cfg.MaxIterations,
		ProbeSteps:    cfg.ProbeSteps,
		ShrinkRatio:   cfg.ShrinkRatio,
		MinDimension:  cfg.MinDimension,
		MinQuality:    cfg.MinQuality,
	})
}

// newGenerator returns ai.ErrNotConfigured with a nil generator when the
// selected provider has no credentials.
func newGenerator(ctx context.Context, cfg *config.Config) (ai.Generator, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			return nil, ai.ErrNotConfigured
		}
		client, err := ai.NewOpenAICompatibleClient(ai.ChatConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			ImageModel: cfg.Gemini.ImageModel,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.CompressWorker != nil {
		a.CompressWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
