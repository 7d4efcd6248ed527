package services

import (
	"sync"

	"aura_server/models"
	"aura_server/observability"
)

// DefaultSubscriberBuffer caps how many undelivered messages a subscriber
// may accumulate before it is cut off.
const DefaultSubscriberBuffer = 4096

// Subscription is a live, ordered view of one chat. C yields the history
// first and then every later append. C is closed after Cancel, after the chat
// is deleted, or after the subscriber overflows; Err tells which.
type Subscription struct {
	C <-chan models.Message

	sub *subscriber
	hub *Hub
}

// Cancel detaches the subscriber. It never touches the stored log.
func (s *Subscription) Cancel() {
	s.hub.remove(s.sub)
	s.sub.stop(nil)
}

// Done is closed once C has been closed
func (s *Subscription) Done() <-chan struct{} { return s.sub.ended }

// Err is nil while the subscription is live or after Cancel, ErrChatClosed
// when the chat was deleted and ErrSubscriberOverflow when it fell behind.
func (s *Subscription) Err() error {
	s.sub.mu.Lock()
	defer s.sub.mu.Unlock()
	return s.sub.err
}

// subscriber buffers messages in an unbounded-until-limit queue and pumps
// them into out from its own goroutine, so publishers never block.
type subscriber struct {
	chatID string
	userID string
	limit  int

	mu      sync.Mutex
	queue   []models.Message
	closing bool // drain what is queued, then close
	err     error

	notify chan struct{}
	done   chan struct{}
	ended  chan struct{} // closed when the pump exits
	once   sync.Once
	out    chan models.Message
}

func newSubscriber(chatID, userID string, limit int) *subscriber {
	return &subscriber{
		chatID: chatID,
		userID: userID,
		limit:  limit,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		ended:  make(chan struct{}),
		out:    make(chan models.Message),
	}
}

func (s *subscriber) enqueue(msgs ...models.Message) {
	s.mu.Lock()
	if s.closing || s.isStopped() {
		s.mu.Unlock()
		return
	}
	if len(s.queue)+len(msgs) > s.limit {
		s.mu.Unlock()
		// dropping messages would create a gap, so end the stream instead
		s.stop(ErrSubscriberOverflow)
		return
	}
	s.queue = append(s.queue, msgs...)
	s.mu.Unlock()
	s.wake()
}

// finish lets the subscriber drain what it already has and then close
func (s *subscriber) finish(err error) {
	s.mu.Lock()
	s.closing = true
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	s.wake()
}

// stop ends delivery immediately
func (s *subscriber) stop(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *subscriber) isStopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscriber) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	defer close(s.ended)
	defer close(s.out)
	defer observability.SubscriptionClosed()
	for {
		s.mu.Lock()
		batch := s.queue
		s.queue = nil
		closing := s.closing
		s.mu.Unlock()

		for _, msg := range batch {
			select {
			case s.out <- msg:
			case <-s.done:
				return
			}
		}
		if len(batch) > 0 {
			continue
		}
		if closing {
			return
		}
		select {
		case <-s.notify:
		case <-s.done:
			return
		}
	}
}

// Hub is the registry of live subscribers per chat id. It also owns the
// per-chat append locks, so closing a chat is ordered against appends and
// new subscriptions.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*subscriber]bool
	locks map[string]*sync.Mutex
	limit int
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		rooms: map[string]map[*subscriber]bool{},
		locks: map[string]*sync.Mutex{},
		limit: DefaultSubscriberBuffer,
	}
}

// chatLock returns the lock serialising append+publish against
// history+attach for one chat. Lock order is chat lock, then h.mu.
func (h *Hub) chatLock(chatID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		h.locks[chatID] = l
	}
	return l
}

// WithBuffer sets the per-subscriber queue limit
func (h *Hub) WithBuffer(limit int) *Hub {
	h.limit = limit
	return h
}

// attach registers a subscriber primed with the chat history. The caller
// must hold the chat's append lock so no message lands between the history
// read and the registration.
func (h *Hub) attach(chatID, userID string, history []models.Message) *Subscription {
	sub := newSubscriber(chatID, userID, h.limit)
	if len(history) > 0 {
		// history may exceed the live limit; it is known up front
		sub.queue = append(sub.queue, history...)
	}

	h.mu.Lock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = map[*subscriber]bool{}
	}
	h.rooms[chatID][sub] = true
	h.mu.Unlock()

	observability.SubscriptionOpened()
	go sub.run()
	sub.wake()
	return &Subscription{C: sub.out, sub: sub, hub: h}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.rooms[sub.chatID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.rooms, sub.chatID)
		}
	}
}

// Publish fans a freshly appended message out to every subscriber of its chat
func (h *Hub) Publish(msg models.Message) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.rooms[msg.ChatID]))
	for sub := range h.rooms[msg.ChatID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.enqueue(msg)
		if sub.isStopped() {
			h.remove(sub)
		}
	}
}

// CloseChat detaches every subscriber of a deleted chat and forgets its
// lock. Messages already queued are still delivered before the channels
// close. It waits for a Subscribe that is between its history read and
// attach, so that subscriber is closed too.
func (h *Hub) CloseChat(chatID string) {
	l := h.chatLock(chatID)
	l.Lock()
	h.mu.Lock()
	subs := h.rooms[chatID]
	delete(h.rooms, chatID)
	delete(h.locks, chatID)
	h.mu.Unlock()
	l.Unlock()

	for sub := range subs {
		sub.finish(ErrChatClosed)
	}
}

// Subscribers reports how many listeners a chat currently has
func (h *Hub) Subscribers(chatID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
