package prompt

// Mode tells the host whether to filter the list locally or ask for
// regeneration on every keystroke.
type Mode string

const (
	ModeFilter   Mode = "FILTER"
	ModeGenerate Mode = "GENERATE"
)

// UI selects the host widget for a prompt.
type UI string

const (
	UIArg      UI = "arg"
	UIDiv      UI = "div"
	UIDrop     UI = "drop"
	UIForm     UI = "form"
	UIEditor   UI = "editor"
	UIHotkey   UI = "hotkey"
	UITextarea UI = "textarea"
)

// PromptData describes the prompt chrome sent once before the session starts.
type PromptData struct {
	Tabs         []string `json:"tabs"`
	TabIndex     int      `json:"tabIndex"`
	Placeholder  string   `json:"placeholder"`
	Script       string   `json:"kitScript,omitempty"`
	ParentScript string   `json:"parentScript,omitempty"`
	Args         string   `json:"kitArgs,omitempty"`
	Secret       bool     `json:"secret"`
	UI           UI       `json:"ui"`
	Strict       bool     `json:"strict"`
	Selected     string   `json:"selected,omitempty"`
	Type         string   `json:"type"`
	IgnoreBlur   bool     `json:"ignoreBlur"`
	HasPreview   bool     `json:"hasPreview"`
}

// Renderer is the outbound boundary to the host. Calls are fire and forget.
// Implementations must be safe for concurrent use because lifecycle
// callbacks and script code may render from their own goroutines.
type Renderer interface {
	SetChoices(choices []Choice, className string)
	SetPanel(html, className string)
	SetPreview(html string)
	SetHint(html string)
	SetMode(mode Mode)
	SetPromptData(data PromptData)
	SetInput(input string)
	SetIgnoreBlur(ignore bool)
}
