package prompt

import (
	"sync"
	"sync/atomic"
)

// sessionSeq numbers sessions across the whole process.
var sessionSeq atomic.Uint64

// Version identifies the context an asynchronous operation started under.
// Cycle advances on every generation and tab switch, so an older generation
// in the same tab is also superseded.
type Version struct {
	Session uint64
	Tab     int
	Cycle   uint64
}

// SessionContext is the live session identity. It is the single source of
// truth for deciding whether an in-flight result is still relevant.
// Writes happen on the session loop (and in Begin when a kit starts a
// session); reads may come from anywhere.
type SessionContext struct {
	mu      sync.RWMutex
	session uint64
	tab     int
	cycle   uint64
}

// NewSessionContext creates a context with no active session.
func NewSessionContext() *SessionContext {
	return &SessionContext{tab: -1}
}

// Begin starts a new session, superseding whatever ran before.
func (c *SessionContext) Begin(tab int) Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = sessionSeq.Add(1)
	c.tab = tab
	c.cycle++
	return c.versionLocked()
}

// NextCycle starts a new generation cycle in the current tab.
func (c *SessionContext) NextCycle() Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cycle++
	return c.versionLocked()
}

// SwitchTab activates tab and starts a new cycle under it.
func (c *SessionContext) SwitchTab(tab int) Version {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tab = tab
	c.cycle++
	return c.versionLocked()
}

// Current returns the live version.
func (c *SessionContext) Current() Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versionLocked()
}

// Fresh reports whether v is still the live version.
func (c *SessionContext) Fresh(v Version) bool {
	return c.Current() == v
}

// SessionID returns the active session id, or 0 before the first session.
func (c *SessionContext) SessionID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// TabIndex returns the active tab index.
func (c *SessionContext) TabIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tab
}

func (c *SessionContext) versionLocked() Version {
	return Version{Session: c.session, Tab: c.tab, Cycle: c.cycle}
}

// Flags is the shared flag state: set from the command line and from the
// flag a host attaches to a submission, read by validators and scripts.
type Flags struct {
	mu    sync.RWMutex
	flags map[string]interface{}
}

// NewFlags creates an empty flag set.
func NewFlags() *Flags {
	return &Flags{flags: make(map[string]interface{})}
}

// Set records a flag value.
func (f *Flags) Set(name string, value interface{}) {
	f.mu.Lock()
	f.flags[name] = value
	f.mu.Unlock()
}

// Get returns a flag value.
func (f *Flags) Get(name string) (interface{}, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.flags[name]
	return v, ok
}

// Has reports whether a flag is set to something other than false, nil or
// the empty string.
func (f *Flags) Has(name string) bool {
	v, ok := f.Get(name)
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	return true
}

// Merge adds flags that are not already set; existing values win.
func (f *Flags) Merge(values map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		if _, exists := f.flags[k]; !exists {
			f.flags[k] = v
		}
	}
}

// Snapshot returns a copy of all flags.
func (f *Flags) Snapshot() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]interface{}, len(f.flags))
	for k, v := range f.flags {
		out[k] = v
	}
	return out
}
