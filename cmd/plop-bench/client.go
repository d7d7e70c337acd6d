package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/vango-dev/plop/internal/demo"
	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/loop"
	"github.com/vango-dev/plop/pkg/protocol"
	"github.com/vango-dev/plop/pkg/vdom"
)

// maxFrames bounds the frames run after a single event.
const maxFrames = 64

type benchCounters struct {
	eventsSent     atomic.Uint64
	eventsComplete atomic.Uint64
	eventBytes     atomic.Uint64
	patchBytes     atomic.Uint64
	patchesTotal   atomic.Uint64
}

type benchErrors struct {
	startFailures       atomic.Uint64
	eventEncodeFailures atomic.Uint64
	eventDecodeFailures atomic.Uint64
	patchEncodeFailures atomic.Uint64
	patchDecodeFailures atomic.Uint64
	totalErrors         atomic.Uint64
}

type patchOpCounts struct {
	counts [256]atomic.Uint64
}

func (p *patchOpCounts) add(op vdom.ChangeOp, n int) {
	p.counts[uint8(op)].Add(uint64(n))
}

func (p *patchOpCounts) snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range p.counts {
		count := p.counts[i].Load()
		if count == 0 {
			continue
		}
		name := vdom.ChangeOp(uint8(i)).String()
		if name == "Unknown" {
			name = fmt.Sprintf("0x%02x", i)
		}
		out[name] = count
	}
	return out
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// runClient fires gestures at cfg.RPS until ctx is done.
func runClient(
	ctx context.Context,
	clientID int,
	cfg benchConfig,
	counters *benchCounters,
	errCounts *benchErrors,
	patchOps *patchOpCounts,
	samples chan<- time.Duration,
) error {
	var patches []*vdom.Patch
	sched := loop.NewManual(time.Unix(0, 0).UTC())
	s, err := demo.Start(sched, demo.Config{Items: cfg.ListSize},
		app.WithLogger(discard),
		app.WithRemoteEvents(true),
		app.WithRenderObserver(func(p *vdom.Patch) { patches = append(patches, p) }),
	)
	if err != nil {
		errCounts.startFailures.Add(1)
		return err
	}
	patches = patches[:0]

	gen := newGestures(rand.New(rand.NewPCG(cfg.Seed, uint64(clientID))))
	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.RPS))
	defer ticker.Stop()

	fail := func(c *atomic.Uint64) {
		c.Add(1)
		errCounts.totalErrors.Add(1)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		step := gen.next(s.Model())
		start := time.Now()

		data, err := protocol.MarshalEvent(&protocol.Event{Path: itemPath(step.Target), Name: string(step.Action)})
		if err != nil {
			fail(&errCounts.eventEncodeFailures)
			continue
		}
		counters.eventsSent.Add(1)
		counters.eventBytes.Add(uint64(len(data)))

		ev, err := protocol.UnmarshalEvent(data)
		if err != nil {
			fail(&errCounts.eventDecodeFailures)
			continue
		}
		s.HandleEvent(ev.Path, ev.Name, ev.Payload, ev.Immediate)
		settle(sched)

		for _, p := range patches {
			b, err := protocol.MarshalPatch(p)
			if err != nil {
				fail(&errCounts.patchEncodeFailures)
				continue
			}
			if _, err := protocol.UnmarshalPatch(b); err != nil {
				fail(&errCounts.patchDecodeFailures)
				continue
			}
			counters.patchesTotal.Add(1)
			counters.patchBytes.Add(uint64(len(b)))
			for op, n := range p.CountChanges() {
				patchOps.add(op, n)
			}
		}
		patches = patches[:0]

		counters.eventsComplete.Add(1)
		samples <- time.Since(start)
	}
}

// itemPath is the path of the list item keyed id.
func itemPath(id string) string {
	return vdom.Root.Add(0, "").Add(0, id).String()
}

func settle(m *loop.Manual) {
	m.Flush()
	for i := 0; i < maxFrames && m.PendingFrames() > 0; i++ {
		m.Frame()
	}
}

// gestures produces pick-up, one to three hovers, then a drop.
type gestures struct {
	rng   *rand.Rand
	overs int
}

func newGestures(rng *rand.Rand) *gestures {
	return &gestures{rng: rng}
}

func (g *gestures) next(m demo.Model) demo.Step {
	ids := m.IDs()
	if m.Drag == nil {
		g.overs = 1 + g.rng.IntN(3)
		return demo.Step{Action: demo.ActionDragStart, Target: ids[g.rng.IntN(len(ids))]}
	}

	targets := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != m.Drag.ItemID {
			targets = append(targets, id)
		}
	}
	if g.overs == 0 || len(targets) == 0 {
		return demo.Step{Action: demo.ActionDrop, Target: demo.PlaceholderID}
	}
	g.overs--
	return demo.Step{Action: demo.ActionDragOver, Target: targets[g.rng.IntN(len(targets))]}
}
