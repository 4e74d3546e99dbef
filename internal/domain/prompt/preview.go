package prompt

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// focus records the latest focus and (re)arms the debounce window. The
// preview belongs to the cycle the focus arrived in.
func (s *session) focus(ev Event) {
	s.focusSeq++
	s.pendingFocus = &ev
	s.focusVersion = s.d.sc.Current()

	if s.cfg.PreviewDebounce <= 0 {
		return
	}
	if s.debounce == nil {
		s.debounce = time.NewTimer(s.cfg.PreviewDebounce)
	} else {
		if !s.debounce.Stop() {
			select {
			case <-s.debounce.C:
			default:
			}
		}
		s.debounce.Reset(s.cfg.PreviewDebounce)
	}
	s.debounceC = s.debounce.C
}

func (s *session) stopDebounce() {
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounceC = nil
}

// flushFocus computes the preview for the pending focus.
func (s *session) flushFocus() {
	ev := s.pendingFocus
	s.pendingFocus = nil
	if ev == nil {
		return
	}

	seq := s.focusSeq
	v := s.focusVersion
	if !s.d.sc.Fresh(v) {
		s.d.metrics.StaleDiscarded("preview")
		s.log.Debug("Discarded focus from an earlier cycle", zap.String("choice", ev.ID))
		return
	}

	choice, ok := s.display.lookup(ev.ID)
	if !ok || choice.Preview == nil {
		s.applyPreview(seq, v, "")
		return
	}

	fc := FocusedChoice{Choice: choice, Index: ev.Index, Input: ev.Input}
	go func() {
		html := s.runPreview(fc)
		s.post(func() { s.applyPreview(seq, v, html) })
	}()
}

func (s *session) runPreview(fc FocusedChoice) (html string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("Preview panicked", zap.String("choice", fc.ID), zap.Any("panic", r))
			s.d.metrics.IncPreviewFailures()
			html = FallbackPreview
		}
	}()

	out, err := fc.Preview(s.ctx, fc)
	if err != nil {
		if s.ctx.Err() == nil {
			s.log.Warn("Preview failed", zap.String("choice", fc.ID), zap.Error(err))
			s.d.metrics.IncPreviewFailures()
		}
		return FallbackPreview
	}
	return out
}

// applyPreview renders html if nothing superseded the focus and the host
// last reported a non-empty list.
func (s *session) applyPreview(seq uint64, v Version, html string) {
	if seq != s.focusSeq || !s.d.sc.Fresh(v) {
		s.d.metrics.StaleDiscarded("preview")
		return
	}
	if s.lastList != ChannelChoices {
		return
	}
	s.display.setPreview(s.d.renderer, html)
}

// Preview runs fn for the kit's initial preview, converting failures to the
// fallback text.
func Preview(ctx context.Context, fn func(ctx context.Context) (string, error)) (html string) {
	defer func() {
		if r := recover(); r != nil {
			html = FallbackPreview
		}
	}()
	out, err := fn(ctx)
	if err != nil {
		return FallbackPreview
	}
	return out
}
