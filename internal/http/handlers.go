package http

import (
	"net/http"
	"strings"

	"github.com/GriffinCanCode/kitprompt/internal/catalog"
	"github.com/GriffinCanCode/kitprompt/internal/docs"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
)

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Handlers contains the REST handlers
type Handlers struct {
	catalog *catalog.Catalog
	docs    *docs.Store
	metrics *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(cat *catalog.Catalog, store *docs.Store, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		catalog: cat,
		docs:    store,
		metrics: metrics,
	}
}

// PromptSummary is the catalog listing entry.
type PromptSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	UI          string   `json:"ui"`
	Tabs        []string `json:"tabs,omitempty"`
	Script      bool     `json:"script"`
	Socket      string   `json:"socket"`
}

func summarize(d *catalog.Definition) PromptSummary {
	ui := d.UI
	if ui == "" {
		ui = "arg"
	}
	s := PromptSummary{
		Name:        d.Name,
		Description: d.Description,
		Placeholder: d.Placeholder,
		UI:          ui,
		Script:      d.HasScript(),
		Socket:      "/prompt/" + d.Name,
	}
	for _, t := range d.Tabs {
		s.Tabs = append(s.Tabs, t.Name)
	}
	return s
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "kitprompt",
		"version": Version,
	})
}

// Health reports live session and connection counts
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"prompts": len(h.catalog.List()),
		"docs":    len(h.docs.Docs()),
		"metrics": h.metrics.Snapshot(),
	})
}

// ListPrompts lists the catalog
func (h *Handlers) ListPrompts(c *gin.Context) {
	defs := h.catalog.List()
	prompts := make([]PromptSummary, len(defs))
	for i, d := range defs {
		prompts[i] = summarize(d)
	}
	c.JSON(http.StatusOK, gin.H{
		"prompts": prompts,
		"count":   len(prompts),
	})
}

// GetPrompt describes one prompt
func (h *Handlers) GetPrompt(c *gin.Context) {
	def, ok := h.catalog.Lookup(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
		return
	}
	c.JSON(http.StatusOK, summarize(def))
}

// GetDoc renders one doc as HTML
func (h *Handlers) GetDoc(c *gin.Context) {
	dir := c.Param("dir")
	file := strings.TrimPrefix(c.Param("file"), "/")

	doc, ok := h.docs.Find(dir, file)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "doc not found"})
		return
	}
	html, err := docs.Highlight(doc.Content, c.DefaultQuery("classes", docs.DefaultClasses))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dir":        doc.Dir,
		"file":       doc.File,
		"title":      doc.Title,
		"html":       html,
		"discussion": doc.Discussion,
	})
}
