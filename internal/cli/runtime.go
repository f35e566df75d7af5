package cli

import (
	"context"
	"time"

	"github.com/facebookgo/clock"
	"github.com/redis/go-redis/v9"

	"study-client/internal/app"
	"study-client/internal/config"
	"study-client/internal/gateway"
	"study-client/internal/infra/memory"
	redisstore "study-client/internal/infra/redis"
	"study-client/internal/loading"
	"study-client/internal/logger"
)

const (
	defaultCacheTTL   = 5 * time.Minute
	defaultSessionTTL = 24 * time.Hour
	defaultUserID     = "default"
)

// questionCache is the question repository plus explicit invalidation,
// served by both the memory and the Redis cache.
type questionCache interface {
	app.QuestionRepository
	Invalidate(ctx context.Context, courseID string) error
}

// runtime is the wired client engine shared by every command.
type runtime struct {
	cfg         config.Config
	log         *logger.Logger
	coordinator *loading.Coordinator
	gateway     *gateway.Gateway
	questions   questionCache
	library     *app.Library
	redis       *redis.Client
	session     *redisstore.SessionStore
}

func loadRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log, coordinator: loading.NewCoordinator()}

	var sessions gateway.SessionProvider = memory.NewSessionStore(cfg.Session.Token)
	if cfg.Redis.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		userID := cfg.Session.UserID
		if userID == "" {
			userID = defaultUserID
		}
		rt.session = redisstore.NewSessionStore(rt.redis, userID, config.TTLDuration(cfg.Redis.TTL, defaultSessionTTL))
		if cfg.Session.Token != "" {
			if err := rt.session.Save(ctx, cfg.Session.Token); err != nil {
				log.Warn("failed to store configured token", "error", err)
			}
		}
		sessions = rt.session
	}

	rt.gateway = gateway.New(cfg.API.BaseURL, config.TTLDuration(cfg.API.Timeout, 0), rt.coordinator, sessions, log)

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, defaultCacheTTL)
	if rt.redis != nil {
		rt.questions = redisstore.NewQuestionRepository(rt.redis, rt.gateway, cacheTTL, log)
	} else {
		rt.questions = memory.NewQuestionRepository(rt.gateway, cacheTTL)
	}
	rt.library = app.NewLibrary(rt.gateway, cfg.Share.Origin, log)
	return rt, nil
}

// newSession builds a quiz session with its own video workflow on the real clock.
func (rt *runtime) newSession() *app.QuizSession {
	video := app.NewVideoWorkflow(rt.gateway, clock.New(), rt.log)
	return app.NewQuizSession(rt.questions, rt.gateway, video, rt.log)
}

func (rt *runtime) Close() {
	rt.coordinator.Close()
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.log.Warn("failed to close redis client", "error", err)
		}
	}
	rt.log.Sync()
}
