package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
)

type Publisher interface {
	ProposalUpdated(ctx context.Context, payload ProposalUpdatedPayload) error
	MessageCreated(ctx context.Context, payload MessageCreatedPayload) error
	UserUpdated(ctx context.Context, payload UserUpdatedPayload) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{
		conn: nc,
	}
}

func (p *NatsPublisher) ProposalUpdated(_ context.Context, payload ProposalUpdatedPayload) error {
	return p.publish(SubjectProposalUpdated, payload)
}

func (p *NatsPublisher) MessageCreated(_ context.Context, payload MessageCreatedPayload) error {
	return p.publish(SubjectMessageCreated, payload)
}

func (p *NatsPublisher) UserUpdated(_ context.Context, payload UserUpdatedPayload) error {
	return p.publish(SubjectUserUpdated, payload)
}

func (p *NatsPublisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	return nil
}

// Recorder keeps published payloads in memory. Tests assert against it
// instead of running a broker.
type Recorder struct {
	mu sync.Mutex

	Proposals []ProposalUpdatedPayload
	Messages  []MessageCreatedPayload
	Users     []UserUpdatedPayload
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ProposalUpdated(_ context.Context, payload ProposalUpdatedPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Proposals = append(r.Proposals, payload)
	return nil
}

func (r *Recorder) MessageCreated(_ context.Context, payload MessageCreatedPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Messages = append(r.Messages, payload)
	return nil
}

func (r *Recorder) UserUpdated(_ context.Context, payload UserUpdatedPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Users = append(r.Users, payload)
	return nil
}

func (r *Recorder) LastProposalEvent() (ProposalUpdatedPayload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Proposals) == 0 {
		return ProposalUpdatedPayload{}, false
	}
	return r.Proposals[len(r.Proposals)-1], true
}
