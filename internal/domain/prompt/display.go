package prompt

// DisplayState is what the controller last rendered. It is only touched on
// the session loop.
type DisplayState struct {
	Choices   []Choice
	ClassName string
	Panel     string
	Preview   string
	Hint      string
}

// listSnapshot captures the displayed list so a rejected submission can put
// it back exactly.
type listSnapshot struct {
	choices   []Choice
	className string
}

func (d *DisplayState) setChoices(r Renderer, choices []Choice, className string) {
	d.Choices = choices
	d.ClassName = className
	r.SetChoices(choices, className)
}

func (d *DisplayState) setPanel(r Renderer, html, className string) {
	d.Panel = html
	r.SetPanel(html, className)
}

func (d *DisplayState) setPreview(r Renderer, html string) {
	d.Preview = html
	r.SetPreview(html)
}

func (d *DisplayState) setHint(r Renderer, html string) {
	d.Hint = html
	r.SetHint(html)
}

func (d *DisplayState) snapshot() listSnapshot {
	return listSnapshot{choices: d.Choices, className: d.ClassName}
}

func (d *DisplayState) restore(r Renderer, s listSnapshot) {
	d.setChoices(r, s.choices, s.className)
}

// lookup finds a displayed choice by id.
func (d *DisplayState) lookup(id string) (Choice, bool) {
	for _, c := range d.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}
