package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Channel names a host event kind. The values are the wire names.
type Channel string

const (
	ChannelTabChanged      Channel = "TAB_CHANGED"
	ChannelValueSubmitted  Channel = "VALUE_SUBMITTED"
	ChannelGenerateChoices Channel = "GENERATE_CHOICES"
	ChannelPromptBlurred   Channel = "PROMPT_BLURRED"
	ChannelChoices         Channel = "CHOICES"
	ChannelNoChoices       Channel = "NO_CHOICES"
	ChannelChoiceFocused   Channel = "CHOICE_FOCUSED"
)

// Valid reports whether c is one of the inbound channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelTabChanged, ChannelValueSubmitted, ChannelGenerateChoices,
		ChannelPromptBlurred, ChannelChoices, ChannelNoChoices, ChannelChoiceFocused:
		return true
	}
	return false
}

// Event is one host-originated message. Which fields are meaningful depends
// on Channel:
//
//	TAB_CHANGED       Tab, Input
//	VALUE_SUBMITTED   Value, Flag
//	GENERATE_CHOICES  Input
//	PROMPT_BLURRED    -
//	CHOICES           Input
//	NO_CHOICES        Input
//	CHOICE_FOCUSED    ID, Index, Input
type Event struct {
	Channel Channel     `json:"channel"`
	Value   interface{} `json:"value,omitempty"`
	Input   string      `json:"input,omitempty"`
	Tab     string      `json:"tab,omitempty"`
	Flag    string      `json:"flag,omitempty"`
	ID      string      `json:"id,omitempty"`
	Index   int         `json:"index,omitempty"`
}

// Validate checks that the event names a known channel.
func (e Event) Validate() error {
	if !e.Channel.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownChannel, e.Channel)
	}
	return nil
}

// EventSource yields host events in the order they were received. A non-nil
// error ends the stream; sources should return ctx.Err() when ctx is done.
type EventSource interface {
	Next(ctx context.Context) (Event, error)
}

// Requeuer is implemented by sources that can take back an event. A session
// that settles while holding an undelivered event returns it, so the next
// session on the same source receives it first.
type Requeuer interface {
	Requeue(ev Event)
}

type sourceItem struct {
	ev  Event
	err error
}

// ChanSource is an in-memory EventSource. Events and a terminal failure
// share one queue so their relative order is preserved.
type ChanSource struct {
	items chan sourceItem

	mu    sync.Mutex
	front []Event
}

// NewChanSource creates a source buffering up to buffer events.
func NewChanSource(buffer int) *ChanSource {
	return &ChanSource{items: make(chan sourceItem, buffer)}
}

// Send queues an event, blocking while the buffer is full.
func (s *ChanSource) Send(ev Event) {
	s.items <- sourceItem{ev: ev}
}

// Fail queues a terminal error.
func (s *ChanSource) Fail(err error) {
	if err == nil {
		err = errors.New("source failed")
	}
	s.items <- sourceItem{err: err}
}

// Next implements EventSource.
func (s *ChanSource) Next(ctx context.Context) (Event, error) {
	s.mu.Lock()
	if n := len(s.front); n > 0 {
		ev := s.front[n-1]
		s.front = s.front[:n-1]
		s.mu.Unlock()
		return ev, nil
	}
	s.mu.Unlock()

	select {
	case it := <-s.items:
		if it.err != nil {
			return Event{}, it.err
		}
		if err := it.ev.Validate(); err != nil {
			return Event{}, err
		}
		return it.ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Requeue implements Requeuer.
func (s *ChanSource) Requeue(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.front = append(s.front, ev)
}
