// Package events publishes catalog events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/enki/internal/logging"
	"github.com/Taichi-iskw/enki/internal/model"
)

const (
	SubjectMediaCreated = "media.created"
	streamName          = "MEDIA"
	publishTimeout      = 5 * time.Second
)

// MediaCreated is the payload of SubjectMediaCreated
type MediaCreated struct {
	ID       string         `json:"id"`
	Category model.Category `json:"category"`
}

// jetStream is the part of nats.JetStreamContext used here
type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher publishes media events. A zero-value js makes it a no-op.
type Publisher struct {
	js  jetStream
	nc  *nats.Conn
	log *zap.Logger
}

// New connects to NATS and ensures the MEDIA stream exists.
// If natsURL is empty, returns a no-op publisher.
func New(natsURL string, log *zap.Logger) (*Publisher, error) {
	log = logging.OrNop(log)
	if natsURL == "" {
		log.Debug("NATS_URL not set, media events will not be published")
		return &Publisher{log: log}, nil
	}

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	if _, err := js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"media.>"},
		Storage:  nats.FileStorage,
	}); err != nil {
		log.Warn("failed to create NATS stream (may already exist)", zap.Error(err))
	}

	log.Info("NATS publisher initialised", zap.String("stream", streamName))
	return &Publisher{js: js, nc: nc, log: log}, nil
}

// PublishMediaCreated announces a newly created media row
func (p *Publisher) PublishMediaCreated(ctx context.Context, id string, category model.Category) error {
	if p.js == nil {
		return nil
	}

	data, err := json.Marshal(MediaCreated{ID: id, Category: category})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	ack, err := p.js.Publish(SubjectMediaCreated, data, nats.Context(ctx))
	if err != nil {
		return err
	}

	p.log.Debug("NATS event published",
		zap.String("subject", SubjectMediaCreated),
		zap.String("media_id", id),
		zap.Uint64("seq", ack.Sequence),
	)
	return nil
}

// Close drains the connection, if any
func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}
