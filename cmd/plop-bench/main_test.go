package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/plop/internal/demo"
	"github.com/vango-dev/plop/pkg/vdom"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	want := benchConfig{
		Profile:    "standard",
		Clients:    200,
		Duration:   30 * time.Second,
		RPS:        50,
		ListSize:   50,
		Seed:       1,
		JSONOutput: "-",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	cfg, err = parseConfig([]string{"-profile", "Stress", "-clients", "3", "-duration", "2s", "-mem-limit", "1GiB", "-json", "out.json"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.Profile != "stress" || cfg.Clients != 3 || cfg.Duration != 2*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.MaxProcs != 4 || cfg.MemLimitBytes != gib || cfg.JSONOutput != "out.json" {
		t.Errorf("profile caps = %d %d %q", cfg.MaxProcs, cfg.MemLimitBytes, cfg.JSONOutput)
	}
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-profile", "huge"}, `unknown profile "huge"`},
		{[]string{"-clients", "0"}, "-clients must be > 0"},
		{[]string{"-duration", "soon"}, "invalid -duration"},
		{[]string{"-duration", "-1s"}, "-duration must be > 0"},
		{[]string{"-rps", "0"}, "-rps must be > 0"},
		{[]string{"-list", "0"}, "-list must be > 0"},
		{[]string{"-max-procs", "-2"}, "-max-procs must be >= 0"},
		{[]string{"-mem-limit", "lots"}, "invalid -mem-limit"},
		{[]string{"-nope"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := parseConfig(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("parseConfig() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestParseBytes(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"10b", 10, false},
		{"1.5kb", 1500, false},
		{"2MiB", 2 << 20, false},
		{" 2 GiB ", 2 * gib, false},
		{"", 0, true},
		{"GiB", 0, true},
		{"3 parsecs", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBytes(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBytes(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseBytes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPercentile(t *testing.T) {
	var sorted []time.Duration
	for i := 1; i <= 100; i++ {
		sorted = append(sorted, time.Duration(i)*time.Millisecond)
	}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, time.Millisecond},
		{0.5, 50 * time.Millisecond},
		{0.95, 95 * time.Millisecond},
		{0.99, 99 * time.Millisecond},
		{1, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %v", got)
	}
}

func TestGesturesStayValid(t *testing.T) {
	g := newGestures(rand.New(rand.NewPCG(1, 2)))
	m := demo.Init(5)
	drops := 0
	for i := 0; i < 200; i++ {
		step := g.next(m)
		ids := m.IDs()
		switch step.Action {
		case demo.ActionDragStart:
			if m.Drag != nil {
				t.Fatalf("step %d: pick-up while dragging", i)
			}
			m = demo.Update(m, demo.DragStart{ID: step.Target})
		case demo.ActionDragOver:
			if m.Drag == nil || step.Target == m.Drag.ItemID {
				t.Fatalf("step %d: hover %q with drag %+v", i, step.Target, m.Drag)
			}
			m = demo.Update(m, demo.DragOver{ID: step.Target})
		case demo.ActionDrop:
			if m.Drag == nil || step.Target != demo.PlaceholderID {
				t.Fatalf("step %d: drop %q with drag %+v", i, step.Target, m.Drag)
			}
			m = demo.Update(m, demo.DropEnd{})
			drops++
			continue
		default:
			t.Fatalf("step %d: unexpected action %q", i, step.Action)
		}
		if !slices.Contains(ids, step.Target) {
			t.Fatalf("step %d: target %q not in %v", i, step.Target, ids)
		}
	}
	if drops == 0 {
		t.Error("no gesture completed")
	}
	if got := m.Items.Len(); got != 5 {
		t.Errorf("list has %d items after gestures, want 5", got)
	}
}

func TestItemPath(t *testing.T) {
	if got := itemPath("number-3"); got != "0\tnumber-3" {
		t.Errorf("itemPath() = %q", got)
	}
}

func TestPatchOpCounts(t *testing.T) {
	var ops patchOpCounts
	ops.add(vdom.OpMove, 2)
	ops.add(vdom.OpInsert, 1)
	ops.add(vdom.ChangeOp(0xff), 1)
	want := map[string]uint64{"Move": 2, "Insert": 1, "0xff": 1}
	if diff := cmp.Diff(want, ops.snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRunReportsTraffic(t *testing.T) {
	cfg := benchConfig{
		Profile:  "test",
		Clients:  2,
		Duration: 150 * time.Millisecond,
		RPS:      500,
		ListSize: 6,
		Seed:     7,
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	report := run(ctx, cfg)

	if report.Errors.TotalErrors != 0 {
		t.Fatalf("errors = %+v", report.Errors)
	}
	if report.Throughput.EventsTotal == 0 {
		t.Fatal("no events completed")
	}
	if report.Protocol.PatchesTotal == 0 || report.Protocol.PatchBytesTotal == 0 {
		t.Errorf("protocol = %+v", report.Protocol)
	}
	if report.Protocol.EventBytesTotal == 0 {
		t.Error("no event bytes counted")
	}
	if report.LatencyMS.Max < report.LatencyMS.Min {
		t.Errorf("latency = %+v", report.LatencyMS)
	}

	var buf bytes.Buffer
	writeSummary(&buf, report)
	for _, want := range []string{"Profile: test", "Clients: 2", "List size: 6"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, buf.String())
		}
	}
}
