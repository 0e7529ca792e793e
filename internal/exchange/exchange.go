// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange runs the message exchange of a thread: persist the user
// message, ask the gateway, persist the reply.
//
// Each thread moves Idle -> Awaiting-Reply on Submit and back to Idle on
// Complete. Threads are independent: one thread awaiting a reply never
// blocks another.
//
//	req, msgs, err := svc.Submit(id, text)   // user message persisted
//	reply := req.Do(ctx)                      // blocking, run off the UI loop
//	msgs, outcome, err := svc.Complete(req, reply)
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/session"
	"github.com/jeranaias/chatbox/internal/storage"
)

// =============================================================================
// ERRORS AND OUTCOMES
// =============================================================================

var (
	// ErrEmptyMessage is returned for blank input; nothing is stored or sent.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrReplyPending is returned when the thread already awaits a reply.
	ErrReplyPending = errors.New("a reply is already pending for this thread")
)

// Outcome says what Complete did with a reply.
type Outcome int

const (
	// OutcomeAppended means the reply was persisted to its thread.
	OutcomeAppended Outcome = iota

	// OutcomeDiscarded means the reply was dropped: the request was
	// canceled or the thread was deleted while it was in flight.
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAppended:
		return "appended"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Sender produces a reply for one user message. *cloud.Gateway implements it.
type Sender interface {
	Send(ctx context.Context, threadID model.ThreadID, text string) cloud.Reply
}

// =============================================================================
// SERVICE
// =============================================================================

// Service coordinates the thread store, the gateway and the pending tracker.
type Service struct {
	store   *storage.ThreadStore
	gateway Sender
	tracker *session.Tracker
}

// NewService creates a service. A nil tracker gets a fresh one.
func NewService(store *storage.ThreadStore, gateway Sender, tracker *session.Tracker) *Service {
	if tracker == nil {
		tracker = session.NewTracker()
	}
	return &Service{store: store, gateway: gateway, tracker: tracker}
}

// Store returns the thread store.
func (s *Service) Store() *storage.ThreadStore {
	return s.store
}

// Request is one in-flight exchange, returned by Submit.
type Request struct {
	ThreadID model.ThreadID
	Text     string

	ctx   context.Context
	token session.Token
	svc   *Service
}

// Submit validates text, persists it as a user message and marks the thread
// as awaiting a reply. Text is stored as typed; only the emptiness check
// trims it.
func (s *Service) Submit(threadID model.ThreadID, text string) (*Request, []model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, ErrEmptyMessage
	}

	known, err := s.store.Contains(threadID)
	if err != nil {
		return nil, nil, err
	}
	if !known {
		return nil, nil, fmt.Errorf("%w: %s", storage.ErrThreadNotFound, threadID)
	}

	ctx, token, err := s.tracker.Begin(context.Background(), threadID)
	if err != nil {
		if errors.Is(err, session.ErrAlreadyPending) {
			return nil, nil, ErrReplyPending
		}
		return nil, nil, err
	}

	msgs, err := s.store.Append(threadID, model.NewUserMessage(text))
	if err != nil {
		s.tracker.Finish(threadID, token)
		return nil, nil, err
	}

	logger.WithThread("exchange", string(threadID)).Debug("message submitted", "messages", len(msgs))
	return &Request{
		ThreadID: threadID,
		Text:     text,
		ctx:      ctx,
		token:    token,
		svc:      s,
	}, msgs, nil
}

// Do performs the gateway call. It blocks until the reply arrives, ctx is
// canceled, or the thread's request is canceled through the Service.
func (r *Request) Do(ctx context.Context) cloud.Reply {
	merged, cancel := context.WithCancel(r.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return r.svc.gateway.Send(merged, r.ThreadID, r.Text)
}

// Complete returns the thread to Idle and persists the reply, unless the
// request was canceled or the thread no longer exists.
func (s *Service) Complete(req *Request, reply cloud.Reply) ([]model.Message, Outcome, error) {
	log := logger.WithThread("exchange", string(req.ThreadID))

	elapsed, _ := s.tracker.Elapsed(req.ThreadID)
	current := s.tracker.Finish(req.ThreadID, req.token)
	if reply.Canceled || !current {
		log.Debug("reply discarded", "reason", "canceled")
		return nil, OutcomeDiscarded, nil
	}

	known, err := s.store.Contains(req.ThreadID)
	if err != nil {
		return nil, OutcomeDiscarded, err
	}
	if !known {
		log.Info("reply discarded", "reason", "thread deleted")
		return nil, OutcomeDiscarded, nil
	}

	msgs, err := s.store.Append(req.ThreadID, model.NewAssistantMessage(reply.Text))
	if err != nil {
		return nil, OutcomeDiscarded, err
	}
	log.Debug("reply appended", "elapsed", elapsed.Round(time.Millisecond), "failed", reply.Err != nil)
	return msgs, OutcomeAppended, nil
}

// Exchange runs Submit, Do and Complete in sequence. It returns the thread
// after the reply was appended. A canceled ctx yields ctx's error.
func (s *Service) Exchange(ctx context.Context, threadID model.ThreadID, text string) ([]model.Message, cloud.Reply, error) {
	req, _, err := s.Submit(threadID, text)
	if err != nil {
		return nil, cloud.Reply{}, err
	}

	reply := req.Do(ctx)
	msgs, outcome, err := s.Complete(req, reply)
	if err != nil {
		return nil, reply, err
	}
	if outcome == OutcomeDiscarded {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, reply, ctxErr
		}
		return nil, reply, context.Canceled
	}
	return msgs, reply, nil
}

// Pending reports whether threadID awaits a reply.
func (s *Service) Pending(threadID model.ThreadID) bool {
	return s.tracker.Pending(threadID)
}

// Cancel aborts threadID's in-flight request; its late reply is discarded.
func (s *Service) Cancel(threadID model.ThreadID) bool {
	return s.tracker.Cancel(threadID)
}

// CancelAll aborts every in-flight request.
func (s *Service) CancelAll() int {
	return s.tracker.CancelAll()
}
