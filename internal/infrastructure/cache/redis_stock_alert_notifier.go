package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appinv "github.com/spares/backend/internal/application/inventory"
	"github.com/spares/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const alertChannelLabel = "redis"

// RedisStockAlertNotifier publishes low-stock alerts on a Redis channel.
// Repeats of the same alert for a record are suppressed for DedupeTTL.
type RedisStockAlertNotifier struct {
	client  redisCmdable
	channel string
	dedupe  DedupeStore
	ttl     time.Duration
	metrics *telemetry.AlertDeliveryMetrics
	logger  *zap.Logger
}

// RedisNotifierConfig configures RedisStockAlertNotifier
type RedisNotifierConfig struct {
	Channel   string
	DedupeTTL time.Duration
}

// NewRedisStockAlertNotifier creates the notifier. dedupe may be nil to publish every alert.
func NewRedisStockAlertNotifier(
	client redisCmdable,
	dedupe DedupeStore,
	cfg RedisNotifierConfig,
	metrics *telemetry.AlertDeliveryMetrics,
	logger *zap.Logger,
) *RedisStockAlertNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStockAlertNotifier{
		client:  client,
		channel: cfg.Channel,
		dedupe:  dedupe,
		ttl:     cfg.DedupeTTL,
		metrics: metrics,
		logger:  logger.Named("stock_alerts"),
	}
}

// SendAlert implements appinv.StockAlertNotifier
func (n *RedisStockAlertNotifier) SendAlert(ctx context.Context, alert appinv.StockAlert) error {
	key := alert.DedupeKey()

	if n.dedupe != nil && n.ttl > 0 {
		fresh, err := n.dedupe.Claim(ctx, key, n.ttl)
		if err != nil {
			// fail open: an unreachable store must not block the alert
			n.logger.Warn("Alert dedupe unavailable", zap.String("key", key), zap.Error(err))
		} else if !fresh {
			n.metrics.Observe(alertChannelLabel, telemetry.AlertDeduplicated)
			n.logger.Debug("Duplicate stock alert suppressed", zap.String("key", key))
			return nil
		}
	}

	payload, err := json.Marshal(alert)
	if err != nil {
		n.metrics.Observe(alertChannelLabel, telemetry.AlertFailed)
		return fmt.Errorf("encode stock alert: %w", err)
	}

	receivers, err := n.client.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		n.metrics.Observe(alertChannelLabel, telemetry.AlertFailed)
		if n.dedupe != nil {
			if rerr := n.dedupe.Release(ctx, key); rerr != nil {
				n.logger.Warn("Failed to release alert key", zap.String("key", key), zap.Error(rerr))
			}
		}
		return fmt.Errorf("publish stock alert to %s: %w", n.channel, err)
	}

	n.metrics.Observe(alertChannelLabel, telemetry.AlertDelivered)
	n.logger.Debug("Stock alert published",
		zap.String("channel", n.channel),
		zap.String("key", key),
		zap.Int64("receivers", receivers),
	)
	return nil
}

var _ appinv.StockAlertNotifier = (*RedisStockAlertNotifier)(nil)
