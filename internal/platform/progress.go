package platform

import (
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"antcolony/internal/colony"
)

// progress logs running food totals every n ticks.
type progress struct {
	log      logrus.FieldLogger
	every    int
	maxSteps int
	food     int
	window   int
}

func newProgress(log logrus.FieldLogger, every, maxSteps int) *progress {
	return &progress{log: log, every: every, maxSteps: maxSteps}
}

func (p *progress) ObserveStep(colony.StepRecord) {}

func (p *progress) ObserveTick(s colony.TickSummary) {
	delivered := s.FoodTotal()
	p.food += delivered
	p.window += delivered
	done := s.Tick + 1
	if done%p.every != 0 && done != p.maxSteps {
		return
	}
	p.log.WithFields(logrus.Fields{
		"tick":   done,
		"food":   p.food,
		"recent": p.window,
	}).Infof("%s/%s ticks, %s food collected", humanize.Comma(int64(done)), humanize.Comma(int64(p.maxSteps)), humanize.Comma(int64(p.food)))
	p.window = 0
}
