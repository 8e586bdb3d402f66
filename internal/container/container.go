package container

import (
	"context"
	"fmt"
	"time"

	"github.com/USSTM/swagger-analyzer/internal/api"
	"github.com/USSTM/swagger-analyzer/internal/config"
	"github.com/USSTM/swagger-analyzer/internal/llm"
	"github.com/USSTM/swagger-analyzer/internal/logging"
	"github.com/USSTM/swagger-analyzer/internal/metrics"
	"github.com/USSTM/swagger-analyzer/internal/session"
	"github.com/USSTM/swagger-analyzer/internal/synth"
	"github.com/redis/go-redis/v9"
)

const metricsNamespace = "swagger_analyzer"

// CredentialVerifier is satisfied by *llm.Client.
type CredentialVerifier interface {
	VerifyCredential(ctx context.Context) (int, error)
}

type Container struct {
	Config      *config.Config
	Metrics     *metrics.Prom
	RedisClient *redis.Client
	Sessions    *session.Manager
	Synthesizer *synth.Synthesizer
	Credential  api.CredentialStatus
	Server      *api.Server
}

// New wires every dependency and verifies the API credential before returning.
// A missing key fails without any network traffic.
func New(ctx context.Context, cfg config.Config) (*Container, error) {
	prom := metrics.NewProm(metricsNamespace)

	client, err := llm.NewClient(cfg.LLM, prom)
	if err != nil {
		return nil, err
	}

	return build(ctx, cfg, prom, client, client)
}

func build(ctx context.Context, cfg config.Config, prom *metrics.Prom, client synth.ChatClient, verifier CredentialVerifier) (*Container, error) {
	c := &Container{
		Config:  &cfg,
		Metrics: prom,
	}

	modelCount, err := verifier.VerifyCredential(ctx)
	if err != nil {
		return nil, fmt.Errorf("credential verification failed: %w", err)
	}
	c.Credential = api.CredentialStatus{ModelCount: modelCount, VerifiedAt: time.Now().UTC()}
	logging.Info("OpenRouter authentication successful", "models", modelCount)

	store, err := c.newStore(ctx)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	tokens, err := session.NewTokenService([]byte(cfg.Session.SigningKey), cfg.Session.Issuer, cfg.Session.Expiry)
	if err != nil {
		c.Cleanup()
		return nil, err
	}

	c.Sessions = session.NewManager(store, tokens, cfg.Session)
	c.Synthesizer = synth.New(client, cfg.LLM.Model, prom)
	c.Server = api.NewServer(c.Synthesizer, c.Sessions, c.Credential, cfg.Server.MaxUploadBytes)

	return c, nil
}

func (c *Container) newStore(ctx context.Context) (session.Store, error) {
	switch c.Config.Session.Store {
	case "", "memory":
		logging.Info("Using in-memory session store")
		return session.NewMemoryStore(c.Config.Session.Expiry), nil
	case "redis":
		c.RedisClient = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logging.Info("Connected to redis", "addr", c.Config.Redis.Addr, "db", c.Config.Redis.DB)
		return session.NewRedisStore(c.RedisClient, c.Config.Session.Expiry), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", c.Config.Session.Store)
	}
}

// RouterOptions returns the router wiring for this container.
func (c *Container) RouterOptions() api.RouterOptions {
	return api.RouterOptions{
		CORS:           &c.Config.CORS,
		Metrics:        c.Metrics,
		MetricsHandler: c.Metrics.Handler(),
	}
}

func (c *Container) Cleanup() {
	if c.RedisClient != nil {
		c.RedisClient.Close()
		logging.Info("Redis client closed")
	}
}
