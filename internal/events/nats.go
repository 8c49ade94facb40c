// Rewound - Media Server Year in Review
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewound

//go:build nats

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/rewound/internal/config"
	"github.com/tomtom215/rewound/internal/logging"
)

// EmbeddedServer wraps a NATS server with lifecycle management. The
// embedded server gives single-binary deployments a JetStream instance
// without an external broker.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer creates and starts an embedded NATS server with
// JetStream enabled. Returns an error if the server is not ready within
// 30 seconds.
func NewEmbeddedServer(cfg *config.NATSConfig) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "rewound-events",
		Host:       cfg.Host,
		Port:       cfg.Port,
		JetStream:  true,
		StoreDir:   cfg.StoreDir,
		MaxPayload: 1 << 20, // sync events are tiny
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	ns.ConfigureLogger()
	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
	}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// IsRunning returns server health status.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// Shutdown stops the server and waits for completion or context
// cancellation.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NATSBus is the NATS-backed event bus for multi-process deployments.
// Sync completion events flow through JetStream so an instance that was
// briefly unreachable still sees invalidations from its peers.
type NATSBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	embedded   *EmbeddedServer
}

// NewNATSBus connects a bus to the configured NATS deployment, starting
// an embedded server first when cfg.EmbeddedServer is set.
func NewNATSBus(cfg *config.NATSConfig) (*NATSBus, error) {
	logger := newWatermillLogger()

	var embedded *EmbeddedServer
	url := cfg.URL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded NATS server: %w", err)
		}
		embedded = srv
		url = srv.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:            url,
		NatsOptions:    natsOpts,
		Unmarshaler:    &wmNats.NATSMarshaler{},
		AckWaitTimeout: 30 * time.Second,
		CloseTimeout:   30 * time.Second,
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			AckAsync:      false,
			DurablePrefix: "rewound",
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(5),
				natsgo.DeliverNew(),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		shutdownEmbedded(embedded)
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return &NATSBus{
		publisher:  pub,
		subscriber: sub,
		embedded:   embedded,
	}, nil
}

// PublishSyncCompleted validates and publishes a sync completion event.
func (b *NATSBus) PublishSyncCompleted(event *SyncCompletedEvent) error {
	payload, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode sync event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.publisher.Publish(TopicSyncCompleted, msg); err != nil {
		return fmt.Errorf("failed to publish sync event: %w", err)
	}
	return nil
}

// SubscribeSyncCompleted delivers decoded sync completion events to fn
// on a background goroutine until ctx is canceled or the bus closes.
func (b *NATSBus) SubscribeSyncCompleted(ctx context.Context, fn func(*SyncCompletedEvent)) error {
	messages, err := b.subscriber.Subscribe(ctx, TopicSyncCompleted)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicSyncCompleted, err)
	}

	go func() {
		for msg := range messages {
			event, err := UnmarshalSyncCompleted(msg.Payload)
			if err != nil {
				logging.Warn().
					Err(err).
					Str("message_uuid", msg.UUID).
					Msg("Dropping undecodable sync event")
				msg.Ack()
				continue
			}
			fn(event)
			msg.Ack()
		}
	}()
	return nil
}

// Close shuts down the publisher, subscriber, and embedded server.
func (b *NATSBus) Close() error {
	var firstErr error
	if err := b.publisher.Close(); err != nil {
		firstErr = err
	}
	if err := b.subscriber.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if b.embedded != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.embedded.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func shutdownEmbedded(embedded *EmbeddedServer) {
	if embedded == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = embedded.Shutdown(ctx)
}
