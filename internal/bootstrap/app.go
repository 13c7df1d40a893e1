package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	appsvc "legalresearch/internal/app"
	"legalresearch/internal/cache"
	"legalresearch/internal/config"
	"legalresearch/internal/model"
	mysqlClient "legalresearch/internal/platform/mysql"
	rabbitmqClient "legalresearch/internal/platform/rabbitmq"
	redisClient "legalresearch/internal/platform/redis"
	"legalresearch/internal/repository"
	"legalresearch/internal/worker"
)

type App struct {
	Config       *config.Config
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	StatusWorker *worker.StatusWorker

	TenantService   *appsvc.TenantService
	AuthService     *appsvc.AuthService
	DocumentService *appsvc.DocumentService
	QueryService    *appsvc.QueryService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.Document{},
		&model.Query{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	orgRepo := repository.NewOrganizationRepository(mysqlDB)
	userRepo := repository.NewUserRepository(mysqlDB)
	docRepo := repository.NewDocumentRepository(mysqlDB)
	queryRepo := repository.NewQueryRepository(mysqlDB)

	ingestPublisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)
	queryCache := cache.NewQueryCache(redisCli, time.Duration(cfg.Redis.QueryCacheTTLSeconds)*time.Second)

	tenantService := appsvc.NewTenantService(orgRepo, userRepo)
	authService := appsvc.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute,
	)
	documentService := appsvc.NewDocumentService(orgRepo, docRepo, ingestPublisher)
	queryService := appsvc.NewQueryService(userRepo, queryRepo, docRepo, queryCache)

	statusWorker := worker.NewStatusWorker(mqConn, documentService, cfg.RabbitMQ.StatusQueue)
	if err := statusWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start status worker failed: %w", err)
	}

	app := &App{
		Config:          cfg,
		MySQL:           mysqlDB,
		Redis:           redisCli,
		MQConn:          mqConn,
		StatusWorker:    statusWorker,
		TenantService:   tenantService,
		AuthService:     authService,
		DocumentService: documentService,
		QueryService:    queryService,
		StartedAt:       time.Now(),
	}

	if cfg.Seed.Enabled {
		if err := Seed(tenantService, cfg.Seed.AdminPassword); err != nil {
			return nil, fmt.Errorf("seed demo tenant failed: %w", err)
		}
	}

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.StatusWorker != nil {
		a.StatusWorker.Close()
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
	return closeErr
}
