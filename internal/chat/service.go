package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/the-hive-labs/hive-timebank/internal/events"
	"github.com/the-hive-labs/hive-timebank/internal/proposal"
)

const previewLength = 80

var ErrEmptyMessage = errors.New("message body is empty")

type store interface {
	Create(m *Message) error
	GetThread(proposalID uuid.UUID, offset, limit int) ([]Message, error)
	MarkRead(proposalID, readerID uuid.UUID, at time.Time) error
	CountUnread(readerID uuid.UUID) (int64, error)
}

type ProposalProvider interface {
	GetByID(viewerID, id uuid.UUID) (*proposal.Proposal, error)
}

type Service struct {
	messages  store
	proposals ProposalProvider
	publisher events.Publisher

	now func() time.Time
}

func NewService(messages store, proposals ProposalProvider, publisher events.Publisher) *Service {
	return &Service{
		messages:  messages,
		proposals: proposals,
		publisher: publisher,
		now:       time.Now,
	}
}

// Send posts a message into the proposal thread. The receiver is always the
// sender's counterparty; the participant check lives in the proposal lookup.
func (s *Service) Send(ctx context.Context, senderID, proposalID uuid.UUID, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}

	p, err := s.proposals.GetByID(senderID, proposalID)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	receiverID := p.RequesterID
	if senderID == p.RequesterID {
		receiverID = p.ProviderID
	}

	m := Message{
		ID:         uuid.New(),
		ProposalID: proposalID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
	}

	if err = s.messages.Create(&m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	preview := m.Body
	if runes := []rune(preview); len(runes) > previewLength {
		preview = string(runes[:previewLength])
	}

	err = s.publisher.MessageCreated(ctx, events.MessageCreatedPayload{
		MessageID:  m.ID,
		ProposalID: proposalID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Preview:    preview,
		OccurredAt: s.now(),
	})
	if err != nil {
		log.Error().Err(err).Str("message_id", m.ID.String()).Msg("publish message event")
	}

	return &m, nil
}

// Thread returns the conversation and marks the viewer's side as read.
func (s *Service) Thread(viewerID, proposalID uuid.UUID, offset, limit int) ([]Message, error) {
	if _, err := s.proposals.GetByID(viewerID, proposalID); err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	list, err := s.messages.GetThread(proposalID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}

	if err = s.messages.MarkRead(proposalID, viewerID, s.now()); err != nil {
		log.Error().Err(err).Str("proposal_id", proposalID.String()).Msg("mark thread read")
	}

	return list, nil
}

func (s *Service) UnreadCount(readerID uuid.UUID) (int64, error) {
	return s.messages.CountUnread(readerID)
}
