package prompt

import (
	"context"
	"fmt"
	"html"

	"github.com/GriffinCanCode/kitprompt/internal/render"
	"go.uber.org/zap"
)

// RejectionHint returns the hint shown when verdict rejects value.
func RejectionHint(value interface{}, verdict Verdict) string {
	if msg, ok := verdict.Message(); ok {
		return render.Hint(msg)
	}
	return html.EscapeString(fmt.Sprintf("%v is not a valid value", value))
}

// submit runs the validation gate for a submitted value. A newer submission
// supersedes one whose validator has not returned yet.
func (s *session) submit(ev Event) {
	if ev.Flag != "" {
		s.d.flags.Set(ev.Flag, true)
	}

	s.submitSeq++
	if s.cfg.Validator == nil {
		s.accept(ev.Value)
		return
	}

	seq := s.submitSeq
	snap := s.display.snapshot()
	value := ev.Value
	validator := s.cfg.Validator
	go func() {
		verdict, err := runValidator(s.ctx, validator, value)
		s.post(func() {
			if seq != s.submitSeq {
				s.log.Debug("Discarded superseded validation")
				return
			}
			s.decide(value, verdict, err, snap)
		})
	}()
}

func (s *session) decide(value interface{}, verdict Verdict, err error, snap listSnapshot) {
	if err != nil {
		s.log.Warn("Validator failed", zap.Any("value", value), zap.Error(err))
		s.reject(render.Hint(err.Error()), snap)
		return
	}
	if verdict.Accepted() {
		s.accept(value)
		return
	}
	s.reject(RejectionHint(value, verdict), snap)
}

// reject shows the hint and puts back the list displayed at submission.
func (s *session) reject(hint string, snap listSnapshot) {
	s.d.metrics.IncValidationRejects()
	s.display.setHint(s.d.renderer, hint)
	s.display.restore(s.d.renderer, snap)
}

func runValidator(ctx context.Context, validator Validator, value interface{}) (v Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return validator(ctx, value)
}
