package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/kitprompt/internal/render"
	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// DefaultClasses wrap a highlighted doc preview.
const DefaultClasses = "p-5 leading-loose prose dark:prose-dark"

// Doc is one entry of docs.json.
type Doc struct {
	Dir        string `json:"dir"`
	File       string `json:"file"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Discussion string `json:"discussion,omitempty"`
}

// Store holds the loaded docs. A nil Store has no docs.
type Store struct {
	mu   sync.RWMutex
	docs []Doc

	client  *resty.Client
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// New creates a store holding docs.
func New(docs []Doc, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 2
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil

	client := resty.New().
		SetTimeout(15*time.Second).
		SetHeader("User-Agent", "kitprompt-docs/1.0").
		SetHeader("Accept", "application/json")
	client.SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	s := &Store{client: client, logger: logger}
	s.breaker = resilience.New("docs", resilience.Settings{
		Threshold: 3,
		Cooldown:  time.Minute,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("docs breaker changed state",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	s.set(docs)
	return s
}

// Load reads a docs.json file.
func Load(path string, logger *zap.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read docs: %w", err)
	}
	docs, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(docs, logger), nil
}

// Fetch replaces the store's docs with the docs.json served at url.
func (s *Store) Fetch(ctx context.Context, url string) error {
	var body []byte
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		resp, err := s.client.R().SetContext(ctx).Get(url)
		if err != nil {
			return fmt.Errorf("failed to fetch docs: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("failed to fetch docs: %s", resp.Status())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return err
	}

	docs, err := decode(body)
	if err != nil {
		return err
	}
	s.set(docs)
	s.logger.Info("docs fetched", zap.String("url", url), zap.Int("count", len(docs)))
	return nil
}

func decode(data []byte) ([]Doc, error) {
	var docs []Doc
	if err := sonic.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("invalid docs.json: %w", err)
	}
	return docs, nil
}

func (s *Store) set(docs []Doc) {
	for i := range docs {
		if docs[i].Title == "" {
			docs[i].Title = title(docs[i].Content)
		}
	}
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
}

// Docs returns a copy of the loaded docs.
func (s *Store) Docs() []Doc {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Doc(nil), s.docs...)
}

// Find returns the doc for file in dir.
func (s *Store) Find(dir, file string) (Doc, bool) {
	for _, d := range s.Docs() {
		if d.Dir == dir && d.File == file {
			return d, true
		}
	}
	return Doc{}, false
}

// AddPreview gives every choice without a preview the highlighted content
// of the doc in dir whose file matches the choice value. Docs in dir that
// match no choice are appended as "Discuss topic" choices.
func (s *Store) AddPreview(choices []prompt.Choice, dir, classes string) []prompt.Choice {
	if classes == "" {
		classes = DefaultClasses
	}

	var remaining []Doc
	for _, d := range s.Docs() {
		if d.Dir == dir {
			remaining = append(remaining, d)
		}
	}

	out := make([]prompt.Choice, 0, len(choices)+len(remaining))
	for _, c := range choices {
		if c.Preview != nil {
			out = append(out, c)
			continue
		}
		value := fmt.Sprint(c.Value)
		for i, d := range remaining {
			if d.File != value {
				continue
			}
			remaining = append(remaining[:i], remaining[i+1:]...)
			if d.Content != "" {
				c.Preview = highlighted(d.Content, classes)
			}
			break
		}
		out = append(out, c)
	}

	for _, d := range remaining {
		out = append(out, prompt.Choice{
			Name:        d.Title,
			Description: "Discuss topic",
			Value:       d.File,
			Preview:     highlighted(d.Content, classes),
		})
	}
	return out
}

// Highlight renders markdown content inside a container with classes.
func Highlight(content, classes string) (string, error) {
	html, err := render.Markdown(content)
	if err != nil {
		return "", err
	}
	return render.WrapHTML(html, classes), nil
}

func highlighted(content, classes string) prompt.PreviewFunc {
	return func(context.Context, prompt.FocusedChoice) (string, error) {
		return Highlight(content, classes)
	}
}

// title is the text of the first heading in the rendered content.
func title(content string) string {
	if content == "" {
		return ""
	}
	html, err := render.Markdown(content)
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2").First().Text())
}

// ErrNotFound is returned by Discussion when no doc matches.
var ErrNotFound = errors.New("docs: not found")

// Discussion returns the discussion URL of the doc for file in dir.
func (s *Store) Discussion(dir, file string) (string, error) {
	d, ok := s.Find(dir, file)
	if !ok || d.Discussion == "" {
		return "", ErrNotFound
	}
	return d.Discussion, nil
}
