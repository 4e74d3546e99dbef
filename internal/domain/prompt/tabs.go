package prompt

import "go.uber.org/zap"

// switchTab activates the tab named by ev and regenerates under it. Work
// started under the previous tab is left to finish and fails the freshness
// check.
func (s *session) switchTab(ev Event) {
	idx := -1
	for i, t := range s.cfg.Tabs {
		if t.Name == ev.Tab {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Debug("Unknown tab", zap.String("tab", ev.Tab))
		return
	}

	v := s.d.sc.SwitchTab(idx)
	s.source = s.cfg.Tabs[idx].Source

	s.pendingFocus = nil
	s.stopDebounce()
	s.lastList = ""
	s.focusSeq++
	s.submitSeq++

	s.log.Debug("Tab changed", zap.String("tab", ev.Tab), zap.Int("index", idx))
	s.d.renderer.SetMode(ModeFor(s.source))
	s.resolve(s.source, ev.Input, v)
}
