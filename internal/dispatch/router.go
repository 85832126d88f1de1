// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
	standings "github.com/tomtom215/standingsync/internal/sync"
)

// ErrMalformedTask marks a message whose payload cannot be decoded or fails
// validation. Such messages are acknowledged and dropped.
var ErrMalformedTask = errors.New("malformed task")

// Runner executes units of work. Implemented by *sync.Engine.
type Runner interface {
	SyncManager(ctx context.Context, task standings.ManagerSyncTask) (standings.ManagerOutcome, error)
	SyncCharacter(ctx context.Context, task standings.CharacterSyncTask) (standings.CharacterOutcome, error)
	RefreshWar(ctx context.Context, task standings.WarRefreshTask) error
}

// RouterConfig holds configuration for the task router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// ThrottlePerSecond limits handled messages (0 = disabled).
	ThrottlePerSecond int64

	PoisonQueueTopic string

	// Shards is the number of character topics.
	Shards int
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     30 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     TopicPoison,
		Shards:               4,
	}
}

// RouterConfigFromDispatch builds the router configuration from cfg.
func RouterConfigFromDispatch(cfg *config.DispatchConfig) RouterConfig {
	rc := DefaultRouterConfig()
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	if cfg.RetryCount >= 0 {
		rc.RetryMaxRetries = cfg.RetryCount
	}
	if cfg.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInitialInterval
	}
	if cfg.RetryMaxInterval > 0 {
		rc.RetryMaxInterval = cfg.RetryMaxInterval
	}
	if cfg.PoisonQueueTopic != "" {
		rc.PoisonQueueTopic = cfg.PoisonQueueTopic
	}
	if cfg.Workers > 0 {
		rc.Shards = cfg.Workers
	}
	rc.ThrottlePerSecond = int64(cfg.ThrottlePerSecond)
	return rc
}

// Router consumes task topics and runs them through the engine.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	runner   Runner
	validate *validator.Validate
}

// NewRouter creates a router with poison queue, recovery, retry and
// throttle middleware and registers one handler per task topic.
func NewRouter(cfg RouterConfig, sub message.Subscriber, poisonPub message.Publisher, runner Runner, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	if cfg.Shards < 1 {
		cfg.Shards = 1
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:   wmRouter,
		config:   cfg,
		logger:   logger,
		runner:   runner,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	// Middleware added first wraps outermost: a message reaches the poison
	// queue only once retries are exhausted.
	if poisonPub != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(&countingPublisher{Publisher: poisonPub}, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	if cfg.ThrottlePerSecond > 0 {
		throttle := middleware.NewThrottle(cfg.ThrottlePerSecond, time.Second)
		wmRouter.AddMiddleware(throttle.Middleware)
	}

	wmRouter.AddConsumerHandler("manager_sync", TopicManagerSync, sub,
		handleTask(r, TopicManagerSync, func(ctx context.Context, t standings.ManagerSyncTask) error {
			_, err := runner.SyncManager(ctx, t)
			return err
		}))
	for _, topic := range CharacterTopics(cfg.Shards) {
		wmRouter.AddConsumerHandler("character_sync_"+topic[len(characterTopicPrefix):], topic, sub,
			handleTask(r, topic, func(ctx context.Context, t standings.CharacterSyncTask) error {
				_, err := runner.SyncCharacter(ctx, t)
				return err
			}))
	}
	wmRouter.AddConsumerHandler("war_refresh", TopicWarRefresh, sub,
		handleTask(r, TopicWarRefresh, runner.RefreshWar))

	return r, nil
}

// handleTask decodes a T from the message and runs it with a context
// carrying the message's correlation id.
func handleTask[T any](r *Router, topic string, run func(context.Context, T) error) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		correlationID := middleware.MessageCorrelationID(msg)
		log := logging.WithComponent("dispatch").With().
			Str("topic", topic).
			Str("message_id", msg.UUID).
			Logger()

		task, err := decodeTask[T](r.validate, msg.Payload)
		if err != nil {
			log.Error().Err(err).Str("correlation_id", correlationID).Msg("Dropping malformed task")
			metrics.RecordTaskHandled(topic, err)
			return nil
		}

		ctx := logging.ContextWithCorrelationID(msg.Context(), correlationID)
		ctx = logging.ContextWithLogger(ctx, log)

		err = run(ctx, task)
		metrics.RecordTaskHandled(topic, err)
		return err
	}
}

func decodeTask[T any](v *validator.Validate, payload []byte) (T, error) {
	var task T
	if err := json.Unmarshal(payload, &task); err != nil {
		return task, fmt.Errorf("%w: %w", ErrMalformedTask, err)
	}
	if err := v.Struct(task); err != nil {
		return task, fmt.Errorf("%w: %w", ErrMalformedTask, err)
	}
	return task, nil
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once all handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.router.IsRunning()
}

// Close stops the router, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}

// countingPublisher records messages routed to the poison topic.
type countingPublisher struct {
	message.Publisher
}

func (p *countingPublisher) Publish(topic string, msgs ...*message.Message) error {
	for range msgs {
		metrics.RecordPoisonMessage(topic)
	}
	return p.Publisher.Publish(topic, msgs...)
}
