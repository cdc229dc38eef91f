package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"sirkap_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	warmPDFMaxRetry = 3
	warmPDFTimeout  = 2 * time.Minute
)

type Client struct {
	client *asynq.Client
	queue  string
}

// PDFWarmupScheduler queues background renders of issued quote versions.
type PDFWarmupScheduler interface {
	ScheduleQuotePDFWarmup(ctx context.Context, quoteID uuid.UUID) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return newClient(opt, cfg.GetAsynqQueueName()), nil
}

func newClient(opt asynq.RedisClientOpt, queue string) *Client {
	if queue == "" {
		queue = "default"
	}
	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleQuotePDFWarmup enqueues one render per quote version. A version
// that is already queued is not queued again.
func (c *Client) ScheduleQuotePDFWarmup(ctx context.Context, quoteID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewWarmQuotePDFTask(WarmQuotePDFPayload{QuoteID: quoteID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID(warmPDFTaskID(quoteID)),
		asynq.MaxRetry(warmPDFMaxRetry),
		asynq.Timeout(warmPDFTimeout),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func warmPDFTaskID(quoteID uuid.UUID) string {
	return TaskWarmQuotePDF + ":" + quoteID.String()
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
