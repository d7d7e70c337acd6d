package demo

import (
	"time"

	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/vdom"
)

// maxFrames bounds the frames run after a single step.
const maxFrames = 64

// Snapshot is the outcome of one scripted step.
type Snapshot struct {
	// Step is zero for the initial mount.
	Step    Step
	Patches []*vdom.Patch
	HTML    string
	IDs     []string
}

// PlayConfig configures Play.
type PlayConfig struct {
	Config
	Options []app.Option
}

// Play runs steps against a headless demo on a manual clock, calling each
// with the mount snapshot and then with one snapshot per step.
func Play(steps []Step, cfg PlayConfig, each func(Snapshot) error) error {
	var patches []*vdom.Patch
	opts := make([]app.Option, 0, len(cfg.Options)+1)
	opts = append(opts, cfg.Options...)
	opts = append(opts, app.WithRenderObserver(func(p *vdom.Patch) {
		patches = append(patches, p)
	}))

	sched := loop.NewManual(time.Unix(0, 0).UTC())
	s, err := Start(sched, cfg.Config, opts...)
	if err != nil {
		return err
	}
	emit := func(step Step) error {
		snap := Snapshot{Step: step, Patches: patches, HTML: s.HTML(), IDs: s.Model().IDs()}
		patches = nil
		return each(snap)
	}

	if err := emit(Step{}); err != nil {
		return err
	}
	for _, step := range steps {
		if err := s.Apply(step); err != nil {
			return err
		}
		settle(sched)
		if err := emit(step); err != nil {
			return err
		}
	}
	return nil
}

func settle(m *loop.Manual) {
	m.Flush()
	for i := 0; i < maxFrames && m.PendingFrames() > 0; i++ {
		m.Frame()
	}
}
