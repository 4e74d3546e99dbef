package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/docs"
	"github.com/GriffinCanCode/kitprompt/internal/domain/kit"
	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/render"
	"github.com/GriffinCanCode/kitprompt/internal/script"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// ErrNotFound is returned for an unknown prompt name.
var ErrNotFound = errors.New("catalog: prompt not found")

const pattern = "**/*.{yaml,yml,toml,json,js}"

// Config configures a Catalog
type Config struct {
	Dir           string
	ScriptTimeout time.Duration
	KitMode       string // "js" or "ts"
}

// builtin builds options in code instead of from a file.
type builtin func(ctx context.Context, c *Catalog, k *kit.Kit) (kit.Options, error)

// Catalog holds the prompts that can be run by name.
type Catalog struct {
	config Config
	docs   *docs.Store
	logger *zap.Logger

	mu       sync.RWMutex
	defs     map[string]*Definition
	builtins map[string]builtin
}

// New creates a catalog holding the built-in prompts. Call Scan to add the
// definitions found under Config.Dir.
func New(config Config, store *docs.Store, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ScriptTimeout <= 0 {
		config.ScriptTimeout = script.DefaultConfig().Timeout
	}
	c := &Catalog{
		config:   config,
		docs:     store,
		logger:   logger,
		defs:     make(map[string]*Definition),
		builtins: make(map[string]builtin),
	}
	c.registerBuiltin(&Definition{
		Name:        NewMenuName,
		Description: "Create a new script",
		Placeholder: newMenuPlaceholder,
	}, newMenu)
	return c
}

// Scan loads every definition under the catalog directory. Files that fail
// to parse are logged and skipped. A missing directory is not an error.
func (c *Catalog) Scan() error {
	if c.config.Dir == "" {
		return nil
	}
	if _, err := os.Stat(c.config.Dir); errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("Prompt directory not found", zap.String("dir", c.config.Dir))
		return nil
	}

	matches, err := doublestar.Glob(os.DirFS(c.config.Dir), pattern)
	if err != nil {
		return fmt.Errorf("glob failed: %w", err)
	}

	var defs []*Definition
	var failed int
	scripts := make(map[string]bool)
	for _, rel := range matches {
		def, err := ParseFile(filepath.Join(c.config.Dir, filepath.FromSlash(rel)))
		if err != nil {
			c.logger.Warn("Failed to load prompt", zap.String("file", rel), zap.Error(err))
			failed++
			continue
		}
		if def.scriptPath != "" {
			scripts[def.scriptPath] = true
		}
		defs = append(defs, def)
	}

	// A script referenced by a definition is not a prompt of its own.
	loaded := 0
	for _, def := range defs {
		if scripts[def.path] {
			continue
		}
		c.Register(def)
		loaded++
	}

	c.logger.Info("Prompt catalog loaded",
		zap.String("dir", c.config.Dir),
		zap.Int("loaded", loaded),
		zap.Int("failed", failed))
	return nil
}

// Register adds or replaces a definition.
func (c *Catalog) Register(def *Definition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Name] = def
	delete(c.builtins, def.Name)
}

func (c *Catalog) registerBuiltin(def *Definition, build builtin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.Name] = def
	c.builtins[def.Name] = build
}

// Lookup returns the definition registered under name.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[name]
	return def, ok
}

// List returns all definitions sorted by name.
func (c *Catalog) List() []*Definition {
	c.mu.RLock()
	defs := make([]*Definition, 0, len(c.defs))
	for _, d := range c.defs {
		defs = append(defs, d)
	}
	c.mu.RUnlock()

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Run shows the named prompt on k and returns its value.
func (c *Catalog) Run(ctx context.Context, name string, k *kit.Kit) (interface{}, error) {
	opts, err := c.Options(ctx, name, k)
	if err != nil {
		return nil, err
	}
	if opts.UI == "" || opts.UI == prompt.UIArg {
		return k.Arg(ctx, opts)
	}
	return k.Prompt(ctx, opts)
}

// Options builds the prompt options for name. Script exports override what
// the definition file declares.
func (c *Catalog) Options(ctx context.Context, name string, k *kit.Kit) (kit.Options, error) {
	def, ok := c.Lookup(name)
	if !ok {
		return kit.Options{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	c.mu.RLock()
	build := c.builtins[name]
	c.mu.RUnlock()
	if build != nil {
		return build(ctx, c, k)
	}

	opts := kit.Options{
		UI:          prompt.UI(def.UI),
		Placeholder: def.Placeholder,
		Hint:        def.Hint,
		Input:       def.Input,
		ClassName:   def.ClassName,
		IgnoreBlur:  def.IgnoreBlur,
		Secret:      def.Secret,
		Strict:      def.Strict,
		Tab:         def.Tab,
	}

	var err error
	if opts.Choices, err = c.source(def.Panel, def.Choices, def.Docs); err != nil {
		return kit.Options{}, fmt.Errorf("%s: %w", name, err)
	}
	for _, t := range def.Tabs {
		src, err := c.source(t.Panel, t.Choices, "")
		if err != nil {
			return kit.Options{}, fmt.Errorf("%s: tab %s: %w", name, t.Name, err)
		}
		opts.Tabs = append(opts.Tabs, prompt.Tab{Name: t.Name, Source: src})
	}

	if def.HasScript() {
		if err := c.applyScript(ctx, def, k, &opts); err != nil {
			return kit.Options{}, err
		}
	}
	return opts, nil
}

func (c *Catalog) source(panel string, items []Item, docsDir string) (prompt.ChoiceSource, error) {
	if panel != "" {
		html, err := render.Markdown(panel)
		if err != nil {
			return prompt.ChoiceSource{}, err
		}
		return prompt.Panel(html), nil
	}
	if len(items) == 0 && docsDir == "" {
		return prompt.ChoiceSource{}, nil
	}

	choices := make([]prompt.Choice, len(items))
	for i, it := range items {
		choices[i] = prompt.Choice{
			Name:        it.Name,
			Value:       it.Value,
			Description: it.Description,
			ClassName:   it.ClassName,
		}
		if choices[i].Value == nil {
			choices[i].Value = it.Name
		}
		if it.Preview != "" {
			md := it.Preview
			choices[i].Preview = func(context.Context, prompt.FocusedChoice) (string, error) {
				return docs.Highlight(md, docs.DefaultClasses)
			}
		}
	}
	if docsDir != "" {
		choices = c.docs.AddPreview(choices, docsDir, "")
	}
	return prompt.StaticList(choices...), nil
}

func (c *Catalog) applyScript(ctx context.Context, def *Definition, k *kit.Kit, opts *kit.Options) error {
	rt, err := script.New(script.Config{
		Name:     def.Name,
		Timeout:  c.config.ScriptTimeout,
		Renderer: k.Renderer(),
		Flags:    k.Flags(),
		Logger:   c.logger,
	})
	if err != nil {
		return err
	}
	exp, err := rt.Load(ctx, def.source)
	if err != nil {
		return err
	}

	if exp.Placeholder != "" {
		opts.Placeholder = exp.Placeholder
	}
	if exp.Hint != "" {
		opts.Hint = exp.Hint
	}
	if exp.Input != "" {
		opts.Input = exp.Input
	}
	if exp.ClassName != "" {
		opts.ClassName = exp.ClassName
	}
	opts.IgnoreBlur = opts.IgnoreBlur || exp.IgnoreBlur
	opts.Secret = opts.Secret || exp.Secret
	if !exp.Choices.IsZero() {
		opts.Choices = exp.Choices
	}
	if len(exp.Tabs) > 0 {
		opts.Tabs = exp.Tabs
	}
	if exp.Validator != nil {
		opts.Validator = exp.Validator
	}
	if exp.OnChoices != nil {
		opts.OnChoices = exp.OnChoices
	}
	if exp.OnNoChoices != nil {
		opts.OnNoChoices = exp.OnNoChoices
	}
	return nil
}
