// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/standingsync/internal/logging"
	standings "github.com/tomtom215/standingsync/internal/sync"
)

func newTestChannel(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, logging.NewWatermillAdapter())
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func receive(t *testing.T, msgs <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-msgs:
		msg.Ack()
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublisherCharacterSync(t *testing.T) {
	ch := newTestChannel(t)
	ctx := context.Background()

	msgs, err := ch.Subscribe(ctx, CharacterTopic(2002, 4))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	pub := NewPublisher(ch, 4)
	ctx = logging.ContextWithCorrelationID(ctx, "corr-1")
	if err := pub.DispatchCharacterSync(ctx, standings.CharacterSyncTask{CharacterID: 2002, ManagerID: 7}); err != nil {
		t.Fatalf("DispatchCharacterSync() error = %v", err)
	}

	msg := receive(t, msgs)
	var task standings.CharacterSyncTask
	if err := json.Unmarshal(msg.Payload, &task); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if task.CharacterID != 2002 || task.ManagerID != 7 {
		t.Errorf("task = %+v", task)
	}
	if got := msg.Metadata.Get(MetadataTaskType); got != "character_sync" {
		t.Errorf("task_type = %q", got)
	}
	if got := msg.Metadata.Get(natsgo.MsgIdHdr); got != msg.UUID {
		t.Errorf("Nats-Msg-Id = %q, want %q", got, msg.UUID)
	}
	if got := middleware.MessageCorrelationID(msg); got != "corr-1" {
		t.Errorf("correlation id = %q, want corr-1", got)
	}
}

func TestPublisherCorrelationFallsBackToUUID(t *testing.T) {
	ch := newTestChannel(t)
	msgs, err := ch.Subscribe(context.Background(), TopicWarRefresh)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	pub := NewPublisher(ch, 1)
	if err := pub.DispatchWarRefresh(context.Background(), standings.WarRefreshTask{WarID: 700001}); err != nil {
		t.Fatalf("DispatchWarRefresh() error = %v", err)
	}
	msg := receive(t, msgs)
	if got := middleware.MessageCorrelationID(msg); got != msg.UUID {
		t.Errorf("correlation id = %q, want message uuid", got)
	}
}

func TestPublisherClosed(t *testing.T) {
	pub := NewPublisher(newTestChannel(t), 1)
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	err := pub.DispatchManagerSync(context.Background(), standings.ManagerSyncTask{AllianceID: 3001})
	if !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("DispatchManagerSync() after Close error = %v, want ErrPublisherClosed", err)
	}
}
