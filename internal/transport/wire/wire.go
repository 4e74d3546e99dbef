package wire

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/bytedance/sonic"
)

// Outbound channels (controller to host).
const (
	SetChoices    = "SET_CHOICES"
	SetPanel      = "SET_PANEL"
	SetPreview    = "SET_PREVIEW"
	SetHint       = "SET_HINT"
	SetMode       = "SET_MODE"
	SetPromptData = "SET_PROMPT_DATA"
	SetInput      = "SET_INPUT"
	SetIgnoreBlur = "SET_IGNORE_BLUR"

	// Value and Error report how the prompt settled.
	Value = "VALUE"
	Error = "ERROR"
)

// ErrMalformed reports an inbound frame that is not a valid event.
var ErrMalformed = errors.New("wire: malformed message")

// Message is one outbound frame. Fields sit next to the channel name, the
// way the host reads them.
type Message map[string]interface{}

// Channel returns the frame's channel name.
func (m Message) Channel() string {
	ch, _ := m["channel"].(string)
	return ch
}

// NewMessage builds a frame for channel with the given fields.
func NewMessage(channel string, fields map[string]interface{}) Message {
	msg := make(Message, len(fields)+1)
	for k, v := range fields {
		msg[k] = v
	}
	msg["channel"] = channel
	return msg
}

// Choice is the host view of a prompt.Choice. Previews stay in process; the
// host only learns that one exists.
type Choice struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Value       interface{} `json:"value"`
	Description string      `json:"description,omitempty"`
	ClassName   string      `json:"className,omitempty"`
	HasPreview  bool        `json:"hasPreview"`
}

// Choices converts choices for the wire.
func Choices(choices []prompt.Choice) []Choice {
	out := make([]Choice, len(choices))
	for i, c := range choices {
		out[i] = Choice{
			ID:          c.ID,
			Name:        c.Name,
			Value:       c.Value,
			Description: c.Description,
			ClassName:   c.ClassName,
			HasPreview:  c.Preview != nil,
		}
	}
	return out
}

// Decode parses one inbound frame into an event.
func Decode(data []byte) (prompt.Event, error) {
	var ev prompt.Event
	if err := sonic.Unmarshal(data, &ev); err != nil {
		return prompt.Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := ev.Validate(); err != nil {
		return prompt.Event{}, err
	}
	return ev, nil
}

// Encode serializes an outbound frame.
func Encode(msg Message) ([]byte, error) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", msg.Channel(), err)
	}
	return data, nil
}

// EncodeEvent serializes an inbound event; hosts and tests use it to talk
// to a controller.
func EncodeEvent(ev prompt.Event) ([]byte, error) {
	return sonic.Marshal(ev)
}
