// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package dispatch

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/standingsync/internal/logging"
	"github.com/tomtom215/standingsync/internal/metrics"
	standings "github.com/tomtom215/standingsync/internal/sync"
)

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Metadata keys set on every task message.
const (
	MetadataTaskType = "task_type"
)

// Publisher enqueues sync tasks. It implements sync.Dispatcher.
type Publisher struct {
	publisher message.Publisher
	shards    int
	mu        gosync.RWMutex
	closed    bool
}

// NewPublisher wraps a Watermill publisher. shards is the number of
// character topics and must match the router.
func NewPublisher(pub message.Publisher, shards int) *Publisher {
	if shards < 1 {
		shards = 1
	}
	return &Publisher{publisher: pub, shards: shards}
}

// DispatchManagerSync implements sync.Dispatcher.
func (p *Publisher) DispatchManagerSync(ctx context.Context, task standings.ManagerSyncTask) error {
	return p.publish(ctx, TopicManagerSync, "manager_sync", task)
}

// DispatchCharacterSync implements sync.Dispatcher.
func (p *Publisher) DispatchCharacterSync(ctx context.Context, task standings.CharacterSyncTask) error {
	return p.publish(ctx, CharacterTopic(task.CharacterID, p.shards), "character_sync", task)
}

// DispatchWarRefresh implements sync.Dispatcher.
func (p *Publisher) DispatchWarRefresh(ctx context.Context, task standings.WarRefreshTask) error {
	return p.publish(ctx, TopicWarRefresh, "war_refresh", task)
}

// publish encodes payload and sends it. The message UUID doubles as the
// JetStream deduplication id; the correlation id of ctx is carried along.
func (p *Publisher) publish(ctx context.Context, topic, taskType string, payload any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s task: %w", taskType, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(MetadataTaskType, taskType)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = msg.UUID
	}
	middleware.SetCorrelationID(correlationID, msg)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s task to %s: %w", taskType, topic, err)
	}
	metrics.RecordTaskPublished(topic)
	return nil
}

// Close stops further publishing. The underlying publisher is owned by the
// transport and closed there.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
