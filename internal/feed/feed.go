// Package feed projects a room's stored messages into the ordered,
// access-filtered view a chat window renders, and tracks read state.
package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/prasad-echortech/chat-feature/internal/metrics"
	"github.com/prasad-echortech/chat-feature/internal/models"
	"github.com/prasad-echortech/chat-feature/internal/notify"
	"github.com/prasad-echortech/chat-feature/internal/store"
)

// PageSize is the number of messages added to the window per Expand.
const PageSize = 10

// Projector builds feed views over the message store. One Projector serves
// any number of concurrent subscriptions.
type Projector struct {
	store  store.MessageStore
	bus    notify.Bus
	logger zerolog.Logger
}

// NewProjector creates a feed projector.
func NewProjector(msgStore store.MessageStore, bus notify.Bus, logger zerolog.Logger) *Projector {
	return &Projector{store: msgStore, bus: bus, logger: logger}
}

// Subscription is a live feed for one (user, room) pair. Views are pushed
// on the Views channel after every store change until Close is called or
// the change stream is lost; the channel is closed on teardown.
type Subscription struct {
	p        *Projector
	user     string
	roomID   string
	received func(models.Message)

	views  chan models.FeedView
	handle *notify.Handle

	mu     sync.Mutex
	window int
	wake   chan struct{}

	closed    chan struct{}
	closeOnce sync.Once

	// run-loop state
	primed     bool
	lastTailID string
}

// Subscribe opens a live feed over roomID for user with the given initial
// window. received, if non-nil, is invoked whenever a new message from the
// other participant reaches the tail of the view (the external notifier
// collaborator). The subscription pushes one view immediately and one per
// subsequent store change; it never polls.
func (p *Projector) Subscribe(ctx context.Context, user, roomID string, window int, received func(models.Message)) (*Subscription, error) {
	if window <= 0 {
		window = PageSize
	}

	handle, err := p.bus.Subscribe(ctx, notify.RoomTopic(roomID))
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		p:        p,
		user:     user,
		roomID:   roomID,
		received: received,
		views:    make(chan models.FeedView, 1),
		handle:   handle,
		window:   window,
		wake:     make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}

	metrics.FeedSubscriptions.Inc()
	go s.run(ctx)
	return s, nil
}

// Views returns the stream of feed views. Closed on teardown; a final view
// with Disconnected set precedes the close when the change stream is lost.
func (s *Subscription) Views() <-chan models.FeedView { return s.views }

// Window returns the current window size.
func (s *Subscription) Window() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Expand grows the window by PageSize and re-projects. The existing change
// listener is reused; expansion never stacks a second one.
func (s *Subscription) Expand() {
	s.mu.Lock()
	s.window += PageSize
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close detaches the change listener exactly once. In-flight read-receipt
// writes complete best-effort; they are not awaited.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.handle.Close()
	})
}

func (s *Subscription) run(ctx context.Context) {
	defer metrics.FeedSubscriptions.Dec()
	defer close(s.views)

	s.project(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-s.wake:
			s.project(ctx)
		case _, ok := <-s.handle.C():
			if !ok {
				// The change stream died underneath us. Tell the consumer
				// rather than going silently stale: the disconnect marker
				// displaces any unread buffered view so it is always the
				// last view delivered.
				select {
				case <-s.views:
				default:
				}
				select {
				case s.views <- models.FeedView{Window: s.Window(), Disconnected: true}:
				case <-s.closed:
				}
				return
			}
			s.project(ctx)
		}
	}
}

// View derives one feed view for user over roomID with the given window.
// Observing the view issues read receipts for any unread messages, exactly
// as a live subscription does.
func (p *Projector) View(ctx context.Context, user, roomID string, window int) (models.FeedView, error) {
	if window <= 0 {
		window = PageSize
	}

	msgs, err := p.store.Snapshot(ctx, roomID, window)
	if err != nil {
		return models.FeedView{}, err
	}

	// Exhaustion check runs on the raw record count: fewer records than
	// asked means no more history exists.
	allLoaded := len(msgs) < window

	// Access filter: stale or cross-room records never reach the view.
	visible := msgs[:0]
	for _, m := range msgs {
		if m.HasParticipant(user) {
			visible = append(visible, m)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Timestamp != visible[j].Timestamp {
			return visible[i].Timestamp < visible[j].Timestamp
		}
		return visible[i].ID < visible[j].ID
	})

	p.markUnread(ctx, user, roomID, visible)

	return models.FeedView{Messages: visible, Window: window, AllLoaded: allLoaded}, nil
}

// project re-derives the view from a fresh snapshot and emits it.
func (s *Subscription) project(ctx context.Context) {
	view, err := s.p.View(ctx, s.user, s.roomID, s.Window())
	if err != nil {
		// Degrade to the last emitted view; the next change notification
		// retries naturally.
		s.p.logger.Error().Err(err).Str("room", s.roomID).Msg("feed snapshot failed")
		return
	}

	if tail := view.Tail(); tail != nil {
		if s.primed && tail.ID != s.lastTailID && tail.Sender != s.user && s.received != nil {
			s.received(*tail)
		}
		s.lastTailID = tail.ID
	}
	s.primed = true

	select {
	case s.views <- view:
		metrics.FeedViewsEmitted.Inc()
	case <-s.closed:
	case <-ctx.Done():
	}
}

// markUnread issues fire-and-forget read receipts for every visible
// message the user has not read. At-least-once and idempotent (set
// union); failures are logged, never retried, and never block the view.
func (p *Projector) markUnread(ctx context.Context, user, roomID string, msgs []models.Message) {
	for _, m := range msgs {
		if m.Sender == user || m.ReadByUser(user) {
			continue
		}
		msg := m
		go func() {
			if err := p.store.MarkRead(context.WithoutCancel(ctx), roomID, msg.ID, user); err != nil {
				metrics.ReceiptFailures.Inc()
				p.logger.Warn().Err(err).Str("msg", msg.ID).Msg("read receipt write failed")
				return
			}
			metrics.ReceiptsWritten.Inc()
			// Other participants' feeds re-derive to pick up the receipt.
			if err := p.bus.Publish(context.WithoutCancel(ctx), notify.RoomTopic(roomID)); err != nil {
				p.logger.Warn().Err(err).Str("room", roomID).Msg("receipt notify failed")
			}
		}()
	}
}
