package catalog

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/GriffinCanCode/kitprompt/internal/domain/kit"
	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/render"
)

// NewMenuName is the built-in prompt for creating scripts.
const NewMenuName = "new"

const newMenuPlaceholder = "Create a new script"

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s`)
)

// Slug turns free text into a script name: punctuation is dropped,
// whitespace becomes "-" and the result is lower case.
func Slug(input string) string {
	s := nonWord.ReplaceAllString(input, "")
	s = whitespace.ReplaceAllString(s, "-")
	return strings.ToLower(s)
}

func newMenuChoices(kitMode string) []prompt.Choice {
	language := "JavaScript"
	if kitMode == "ts" {
		language = "TypeScript"
	}
	return []prompt.Choice{
		{Name: "New Script", Description: "Create a script using " + language, Value: "new"},
		{Name: "New from URL/Gist", Description: "Create a script from a URL or Gist", Value: "new-from-url"},
		{Name: "Browse Community Examples", Description: "Visit scriptkit.com/scripts/ for a variety of examples", Value: "browse-examples"},
		{Name: "New Kit Environment", Description: "Create a kenv for scripts", Value: "kenv-create"},
		{Name: "Link Existing Kit Environment", Description: "Link local kenv from your hard drive", Value: "kenv-add"},
		{Name: "Clone Kit Environment Repository", Description: "Clone a kenv repo ", Value: "kenv-clone"},
	}
}

func enterKey() string {
	if runtime.GOOS == "darwin" {
		return "return"
	}
	return "enter"
}

// createPanel is shown when the typed text matches no option.
func createPanel(input string) (string, error) {
	name := Slug(input)
	return render.Markdown(fmt.Sprintf("# Create <code>%s</code>\n\nType <kbd>%s</kbd> to create a script named <code>%s</code>\n",
		name, enterKey(), name))
}

func newMenu(_ context.Context, c *Catalog, k *kit.Kit) (kit.Options, error) {
	strict := false
	opts := kit.Options{
		Placeholder: newMenuPlaceholder,
		Strict:      &strict,
		Choices:     prompt.StaticList(c.docs.AddPreview(newMenuChoices(c.config.KitMode), NewMenuName, "")...),
		OnNoChoices: func(_ context.Context, input string) error {
			if input == "" {
				return nil
			}
			html, err := createPanel(input)
			if err != nil {
				return err
			}
			k.Renderer().SetPanel(html, "")
			return nil
		},
	}
	if v, ok := k.Flags().Get("input"); ok {
		opts.Input, _ = v.(string)
	}
	return opts, nil
}
