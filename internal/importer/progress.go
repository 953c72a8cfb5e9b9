package importer

import (
	"time"

	"go.uber.org/zap"
)

// LogProgress reports import progress through a logger, once per step.
type LogProgress struct {
	log     *zap.Logger
	step    float64
	title   string
	next    float64
	started time.Time
}

// NewLogProgress logs every time progress crosses a multiple of step.
func NewLogProgress(log *zap.Logger, step float64) *LogProgress {
	if step <= 0 || step > 1 {
		step = 0.1
	}
	return &LogProgress{log: log, step: step}
}

// Start implements host.Progress.
func (p *LogProgress) Start(title string) {
	p.title = title
	p.next = p.step
	p.started = time.Now()
	p.log.Info(title)
}

// Update implements host.Progress.
func (p *LogProgress) Update(fraction float64) {
	if fraction < p.next {
		return
	}
	p.log.Info(p.title, zap.Int("percent", int(fraction*100+0.5)))
	for p.next <= fraction {
		p.next += p.step
	}
}

// End implements host.Progress.
func (p *LogProgress) End() {
	p.log.Info("import finished", zap.Duration("elapsed", time.Since(p.started)))
}
