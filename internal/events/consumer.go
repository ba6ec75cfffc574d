package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/the-hive-labs/hive-timebank/internal/config"
)

const groupName = "fanout"

type ProposalUpdatedHandler func(ProposalUpdatedPayload) error

type MessageCreatedHandler func(MessageCreatedPayload) error

// Consumer dispatches broker payloads to typed handlers.
type Consumer struct {
	conn *nats.Conn

	onProposal []ProposalUpdatedHandler
	onMessage  []MessageCreatedHandler

	subs []*nats.Subscription
}

func NewConsumer(nc *nats.Conn) *Consumer {
	return &Consumer{
		conn: nc,
	}
}

func (c *Consumer) OnProposalUpdated(h ProposalUpdatedHandler) {
	c.onProposal = append(c.onProposal, h)
}

func (c *Consumer) OnMessageCreated(h MessageCreatedHandler) {
	c.onMessage = append(c.onMessage, h)
}

func (c *Consumer) Start(ctx context.Context) error {
	group := config.GenerateGroupName(groupName)

	ps, err := c.conn.QueueSubscribe(SubjectProposalUpdated, group, func(msg *nats.Msg) {
		var payload ProposalUpdatedPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject).Msg("unexpected payload")
			return
		}

		for _, h := range c.onProposal {
			if err := h(payload); err != nil {
				log.Error().Err(err).Str("subject", msg.Subject).Msg("process event")
			}
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s/%s: %w", group, SubjectProposalUpdated, err)
	}

	ms, err := c.conn.QueueSubscribe(SubjectMessageCreated, group, func(msg *nats.Msg) {
		var payload MessageCreatedPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Warn().Err(err).Str("subject", msg.Subject).Msg("unexpected payload")
			return
		}

		for _, h := range c.onMessage {
			if err := h(payload); err != nil {
				log.Error().Err(err).Str("subject", msg.Subject).Msg("process event")
			}
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s/%s: %w", group, SubjectMessageCreated, err)
	}

	c.subs = append(c.subs, ps, ms)

	log.Info().Msg("event consumers are started")

	<-ctx.Done()
	return c.stop()
}

func (c *Consumer) stop() error {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Error().Err(err).Msg("unsubscribe event consumer")
		}
	}

	return nil
}
