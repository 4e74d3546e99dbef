package wire

import (
	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/render"
	"go.uber.org/zap"
)

// SendFunc delivers one frame to the host.
type SendFunc func(Message) error

// Renderer implements prompt.Renderer by sending frames. Send failures are
// logged and otherwise ignored: rendering is fire and forget, and a dead
// connection surfaces through the event source.
type Renderer struct {
	send   SendFunc
	logger *zap.Logger
}

// NewRenderer creates a renderer over send. send must be safe for
// concurrent use.
func NewRenderer(send SendFunc, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{send: send, logger: logger}
}

func (r *Renderer) emit(channel string, fields map[string]interface{}) {
	if err := r.send(NewMessage(channel, fields)); err != nil {
		r.logger.Debug("Render dropped", zap.String("channel", channel), zap.Error(err))
	}
}

// SetChoices implements prompt.Renderer.
func (r *Renderer) SetChoices(choices []prompt.Choice, className string) {
	r.emit(SetChoices, map[string]interface{}{
		"choices":   Choices(choices),
		"className": className,
	})
}

// SetPanel implements prompt.Renderer.
func (r *Renderer) SetPanel(html, className string) {
	r.emit(SetPanel, map[string]interface{}{"html": render.WrapHTML(html, className)})
}

// SetPreview implements prompt.Renderer.
func (r *Renderer) SetPreview(html string) {
	r.emit(SetPreview, map[string]interface{}{"html": render.WrapHTML(html, "")})
}

// SetHint implements prompt.Renderer.
func (r *Renderer) SetHint(html string) {
	r.emit(SetHint, map[string]interface{}{"hint": html})
}

// SetMode implements prompt.Renderer.
func (r *Renderer) SetMode(mode prompt.Mode) {
	r.emit(SetMode, map[string]interface{}{"mode": mode})
}

// SetPromptData implements prompt.Renderer.
func (r *Renderer) SetPromptData(data prompt.PromptData) {
	r.emit(SetPromptData, map[string]interface{}{"data": data})
}

// SetInput implements prompt.Renderer.
func (r *Renderer) SetInput(input string) {
	r.emit(SetInput, map[string]interface{}{"input": input})
}

// SetIgnoreBlur implements prompt.Renderer.
func (r *Renderer) SetIgnoreBlur(ignore bool) {
	r.emit(SetIgnoreBlur, map[string]interface{}{"ignore": ignore})
}

// Settled reports the prompt's outcome to the host.
func Settled(value interface{}, err error) Message {
	if err != nil {
		return NewMessage(Error, map[string]interface{}{"message": err.Error()})
	}
	return NewMessage(Value, map[string]interface{}{"value": value})
}
