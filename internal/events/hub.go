// Package events turns store mutations into live query snapshots. A subscriber registers a query
// against a collection and receives the full refreshed result every time that collection
// changes; Close releases it.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	CollectionApplications  = "applications"
	CollectionNotifications = "notifications"
	CollectionUsers         = "users"
)

// Change identifies a mutated document.
type Change struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Origin     string `json:"origin,omitempty"`
}

// Publisher is the write side of the hub as seen by the services.
type Publisher interface {
	Publish(change Change)
}

type discard struct{}

func (discard) Publish(Change) {}

// Discard drops every change; used when live queries are not wired.
var Discard Publisher = discard{}

// QueryFunc produces the current result set for a subscription.
type QueryFunc func(ctx context.Context) (interface{}, error)

type Snapshot struct {
	Data interface{}
	Err  error
	At   time.Time
}

type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[*Subscription]struct{}
	forwarders []func(Change)
	log        logrus.FieldLogger
	gauge      prometheus.Gauge
}

func NewHub(log logrus.FieldLogger, gauge prometheus.Gauge) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		subs:  make(map[string]map[*Subscription]struct{}),
		log:   log,
		gauge: gauge,
	}
}

// Forward registers fn to receive every locally published change, e.g. to relay it to other
// instances.
func (h *Hub) Forward(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.forwarders = append(h.forwarders, fn)
}

// Publish delivers a local change to subscribers and forwarders.
func (h *Hub) Publish(change Change) {
	h.Deliver(change)

	h.mu.RLock()
	forwarders := make([]func(Change), len(h.forwarders))
	copy(forwarders, h.forwarders)
	h.mu.RUnlock()

	for _, fn := range forwarders {
		fn(change)
	}
}

// Deliver wakes the subscribers of change.Collection without forwarding.
func (h *Hub) Deliver(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[change.Collection] {
		sub.markDirty()
	}
}

// Subscribe runs query once immediately and again after every change to collection. The
// subscription ends when Close is called or ctx is cancelled; C is closed afterwards.
func (h *Hub) Subscribe(ctx context.Context, collection string, query QueryFunc) *Subscription {
	c := make(chan Snapshot, 1)
	sub := &Subscription{
		C:          c,
		c:          c,
		hub:        h,
		collection: collection,
		query:      query,
		dirty:      make(chan struct{}, 1),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*Subscription]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	h.mu.Unlock()

	if h.gauge != nil {
		h.gauge.Inc()
	}

	sub.markDirty()
	go sub.run(ctx)
	return sub
}

// Subscribers reports the number of open subscriptions on a collection.
func (h *Hub) Subscribers(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub.collection][sub]; !ok {
		return
	}
	delete(h.subs[sub.collection], sub)
	if len(h.subs[sub.collection]) == 0 {
		delete(h.subs, sub.collection)
	}
	if h.gauge != nil {
		h.gauge.Dec()
	}
}

type Subscription struct {
	// C yields snapshots. Only the latest unread snapshot is kept.
	C <-chan Snapshot

	c          chan Snapshot
	hub        *Hub
	collection string
	query      QueryFunc
	dirty      chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.hub.remove(s)
	})
}

func (s *Subscription) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.c)
	defer s.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.dirty:
		}

		data, err := s.query(ctx)
		if err != nil {
			s.hub.log.WithError(err).WithField("collection", s.collection).Warn("live query failed")
		}
		s.offer(Snapshot{Data: data, Err: err, At: time.Now().UTC()})
	}
}

// offer replaces any unread snapshot with snap.
func (s *Subscription) offer(snap Snapshot) {
	select {
	case s.c <- snap:
		return
	default:
	}
	select {
	case <-s.c:
	default:
	}
	select {
	case s.c <- snap:
	case <-s.done:
	}
}
