// Package client holds the pieces that run inside a client session:
// the delivery reconciler that merges push and poll into one consistent
// view, and the voice playback coordinator.
package client

import (
	"context"
	"sync"
	"time"
)

// Message mirrors the wire shape of a chat listing entry.
type Message struct {
	ID              uint      `json:"id"`
	ChatID          uint      `json:"chatID"`
	SenderID        uint      `json:"senderID"`
	Content         string    `json:"content"`
	IsPrivate       bool      `json:"isPrivate"`
	IsQuotation     bool      `json:"isQuotation"`
	QuotationAmount *int64    `json:"quotationAmount"`
	AttachmentURL   string    `json:"attachmentURL"`
	AttachmentType  string    `json:"attachmentType"`
	CreatedAt       time.Time `json:"createdAt"`
}

// FetchFunc loads one chat's full visible listing from the server. It is
// an idempotent read; the store's insertion order is the only ordering
// that matters.
type FetchFunc func(ctx context.Context, chatID uint) ([]Message, error)

// Reconciler keeps a per-chat cache converged with the store. Realtime
// signals and the poll ticker trigger the very same refetch, so
// duplicated, reordered or lost events cannot corrupt the view. At
// worst a refresh arrives one poll interval late.
type Reconciler struct {
	fetch    FetchFunc
	interval time.Duration

	mu    sync.RWMutex
	cache map[uint][]Message
	live  bool
}

func NewReconciler(fetch FetchFunc, pollInterval time.Duration) *Reconciler {
	return &Reconciler{
		fetch:    fetch,
		interval: pollInterval,
		cache:    make(map[uint][]Message),
	}
}

// Track registers a chat so the polling fallback covers it even before
// the first event arrives.
func (r *Reconciler) Track(chatID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[chatID]; !ok {
		r.cache[chatID] = nil
	}
}

// HandleEvent reacts to a realtime signal. The payload carries no
// content; whatever the event type, the response is the same idempotent
// refetch of that chat.
func (r *Reconciler) HandleEvent(ctx context.Context, eventType string, chatID uint) error {
	switch eventType {
	case "message_created", "chat_closed", "internal_message_created", "internal_chat_created":
		return r.Refresh(ctx, chatID)
	}
	return nil
}

// Refresh replaces the chat's cache entry with the server listing. On
// fetch failure the stale entry stays; the next trigger retries.
func (r *Reconciler) Refresh(ctx context.Context, chatID uint) error {
	msgs, err := r.fetch(ctx, chatID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.cache[chatID] = msgs
	r.mu.Unlock()
	return nil
}

// Messages returns a copy of the cached listing for a chat.
func (r *Reconciler) Messages(chatID uint) []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cached := r.cache[chatID]
	out := make([]Message, len(cached))
	copy(out, cached)
	return out
}

// SetLive flags whether the realtime channel is up. While it is down the
// poll loop refreshes every tracked chat; transport loss is recovered
// here and never surfaced as an error.
func (r *Reconciler) SetLive(up bool) {
	r.mu.Lock()
	r.live = up
	r.mu.Unlock()
}

func (r *Reconciler) isLive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.live
}

func (r *Reconciler) tracked() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uint, 0, len(r.cache))
	for id := range r.cache {
		ids = append(ids, id)
	}
	return ids
}

// Run polls until ctx is done. It is a no-op while the realtime channel
// is live; fetch errors are swallowed, the next tick retries.
func (r *Reconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if r.isLive() {
				continue
			}
			for _, id := range r.tracked() {
				_ = r.Refresh(ctx, id)
			}
		}
	}
}
