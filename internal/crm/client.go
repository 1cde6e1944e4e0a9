package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// Client proxies read-only reporting data from the upstream helpdesk CRM
// through its workflow-automation API. Responses are cached in Redis for a
// short TTL; the proxy never writes.
type Client struct {
	cfg    config.CRMConfig
	cache  *redis.Client
	logger *zap.Logger
}

// NewClient constructs the proxy client. The cache client may be nil.
func NewClient(cfg config.CRMConfig, cache *redis.Client, logger *zap.Logger) *Client {
	return &Client{cfg: cfg, cache: cache, logger: logger}
}

// Reports fetches aggregated report data.
func (c *Client) Reports(ctx context.Context) (json.RawMessage, error) {
	return c.fetchCached(ctx, "crm:reports", "/reports")
}

// Tickets fetches the upstream ticket listing.
func (c *Client) Tickets(ctx context.Context) (json.RawMessage, error) {
	return c.fetchCached(ctx, "crm:tickets", "/tickets")
}

func (c *Client) fetchCached(ctx context.Context, cacheKey, path string) (json.RawMessage, error) {
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			c.logger.Warn("crm cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	if strings.TrimSpace(c.cfg.BaseURL) == "" {
		return nil, apperrors.NewUpstreamError("crm proxy not configured", nil)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	agent := fiber.Get(url)
	if c.cfg.TimeoutSeconds > 0 {
		agent.Timeout(time.Duration(c.cfg.TimeoutSeconds) * time.Second)
	}
	if c.cfg.APIKey != "" {
		agent.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, apperrors.NewUpstreamError("crm request failed", errs[0])
	}
	if code >= 400 {
		return nil, apperrors.NewUpstreamError("crm request failed", fmt.Errorf("upstream status %d", code))
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cfg.CacheTTL()).Err(); err != nil {
			c.logger.Warn("crm cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return body, nil
}
