package container

import (
	"github.com/alumnet/alumni-backend/internal/api"
	"github.com/alumnet/alumni-backend/internal/approval"
	"github.com/alumnet/alumni-backend/internal/auth"
	"github.com/alumnet/alumni-backend/internal/aws"
	"github.com/alumnet/alumni-backend/internal/config"
	"github.com/alumnet/alumni-backend/internal/database"
	"github.com/alumnet/alumni-backend/internal/logging"
	"github.com/alumnet/alumni-backend/internal/notifications"
	"github.com/alumnet/alumni-backend/internal/queue"
	"github.com/alumnet/alumni-backend/internal/store"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config      *config.Config
	Database    *database.Database
	Queue       *queue.TaskQueue
	RedisClient *redis.Client
	AuthService *auth.AuthService
	S3Service   *aws.S3Service
	Workflow    *approval.Workflow
	Server      *api.Server
}

func New(cfg *config.Config) (*Container, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		return nil, err
	}

	taskQueue, err := queue.NewQueue(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Two separate Redis connection pools: the asynq task queue
	// manages its own, this client holds auth state (OTP hashes,
	// refresh tokens).
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	jwtService, err := auth.NewJWTService([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Expiry)
	if err != nil {
		return nil, err
	}

	s3Service, err := aws.NewS3Service(cfg.AWS)
	if err != nil {
		return nil, err
	}

	profiles := store.NewProfileStore(db.Pool())
	memberships := store.NewMembershipStore(db.Pool())
	privileges := store.NewPrivilegeStore(db.Pool())
	audit := store.NewAuditStore(db.Pool())

	notifier, err := notifications.NewNotifier(taskQueue)
	if err != nil {
		return nil, err
	}

	engine := approval.NewEngine(memberships, privileges, profiles)
	workflow := approval.NewWorkflow(engine, profiles, audit, s3Service, notifier)

	authService := auth.NewAuthService(redisClient, jwtService, profiles, cfg.Auth)

	server := api.NewServer(workflow, engine, profiles, memberships, authService, s3Service, taskQueue, jwtService)

	logging.Info("Connected to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port)

	return &Container{
		Config:      cfg,
		Database:    db,
		Queue:       taskQueue,
		RedisClient: redisClient,
		AuthService: authService,
		S3Service:   s3Service,
		Workflow:    workflow,
		Server:      server,
	}, nil
}

func (c *Container) Cleanup() {
	if c.Queue != nil {
		c.Queue.Close()
		logging.Info("Queue client closed")
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
	if c.Database != nil {
		c.Database.Close()
		logging.Info("Database connection closed")
	}
}
