// Package pubsub fans processing progress out to interested clients.
package pubsub

import (
	"sync"

	"github.com/avolkov/vidquiz/internal/models"
)

// Update is one progress event for a video. Progress is an overall
// percentage on the 0-100 scale.
type Update struct {
	Status   models.ProcessingStatus `json:"status"`
	Progress int                     `json:"progress"`
	Message  string                  `json:"message"`
}

const subscriberBuffer = 32

// Broker is an in-memory publish/subscribe registry keyed by video ID.
// Delivery is best-effort: there is no replay, and a subscriber that
// stops draining its channel loses events rather than blocking the
// pipeline. Clients joining late must fetch current status themselves.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Update]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan Update]struct{}),
	}
}

// Subscribe registers a channel for one video's events. The returned
// cancel func must be called exactly once; it closes the channel.
func (b *Broker) Subscribe(videoID string) (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	b.mu.Lock()
	if b.subs[videoID] == nil {
		b.subs[videoID] = make(map[chan Update]struct{})
	}
	b.subs[videoID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if set, ok := b.subs[videoID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
				if len(set) == 0 {
					delete(b.subs, videoID)
				}
			}
		}
	}

	return ch, cancel
}

// Publish delivers an update to every current subscriber of the video.
func (b *Broker) Publish(videoID string, update Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[videoID] {
		select {
		case ch <- update:
		default:
			// Subscriber too slow; drop rather than stall the pipeline.
		}
	}
}

// SubscriberCount reports how many clients follow a video.
func (b *Broker) SubscriberCount(videoID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[videoID])
}
