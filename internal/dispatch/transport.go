// Standingsync - Alliance Standings Synchronization for EVE Online
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/standingsync

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/standingsync/internal/config"
	"github.com/tomtom215/standingsync/internal/logging"
)

// Transport names accepted by dispatch.transport.
const (
	TransportMemory = "memory"
	TransportNATS   = "nats"
)

// Transport is a publisher/subscriber pair plus whatever must be closed
// with it.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	closers    []func() error
}

// NewMemoryTransport returns an in-process gochannel transport. Messages
// are lost on restart.
func NewMemoryTransport(cfg *config.DispatchConfig, logger watermill.LoggerAdapter) *Transport {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, logger)
	return &Transport{
		Publisher:  ch,
		Subscriber: ch,
		closers:    []func() error{ch.Close},
	}
}

// NewTransport builds the transport selected by cfg.Dispatch.Transport.
// natsURL overrides cfg.NATS.URL when non-empty (embedded server).
func NewTransport(ctx context.Context, cfg *config.Config, natsURL string, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Dispatch.Transport {
	case "", TransportMemory:
		return NewMemoryTransport(&cfg.Dispatch, logger), nil
	case TransportNATS:
		natsCfg := cfg.NATS
		if natsURL != "" {
			natsCfg.URL = natsURL
		}
		return NewNATSTransport(ctx, &natsCfg, logger)
	default:
		return nil, fmt.Errorf("unknown dispatch transport %q", cfg.Dispatch.Transport)
	}
}

// Close closes the subscriber and publisher.
func (t *Transport) Close() error {
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	t.closers = nil
	return errors.Join(errs...)
}
