package demo

import (
	"strings"

	"github.com/vango-dev/plop/internal/errors"
)

// Action is a drag-and-drop event type.
type Action string

const (
	ActionDragStart Action = "dragstart"
	ActionDragOver  Action = "dragover"
	ActionDrop      Action = "drop"
	ActionDragEnd   Action = "dragend"
)

var actions = map[Action]bool{
	ActionDragStart: true,
	ActionDragOver:  true,
	ActionDrop:      true,
	ActionDragEnd:   true,
}

// Step fires Action on the item whose id is Target.
type Step struct {
	Action Action
	Target string
}

func (s Step) String() string {
	return string(s.Action) + ":" + s.Target
}

// ParseStep parses "action:target", e.g. "dragover:number-2".
func ParseStep(s string) (Step, error) {
	action, target, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || target == "" {
		return Step{}, errors.New("E140").
			WithDetailf("%q is not of the form action:target", s).
			WithSuggestion("Use e.g. dragstart:number-0")
	}
	step := Step{Action: Action(action), Target: target}
	if !actions[step.Action] {
		return Step{}, errors.New("E140").
			WithDetailf("Unknown action %q.", action).
			WithSuggestion("Use one of dragstart, dragover, drop, dragend")
	}
	return step, nil
}

// ParseScript parses a list of steps.
func ParseScript(lines []string) ([]Step, error) {
	steps := make([]Step, 0, len(lines))
	for _, line := range lines {
		step, err := ParseStep(line)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// DefaultScript drags the first item over the third and drops it.
func DefaultScript() []Step {
	return []Step{
		{ActionDragStart, "number-0"},
		{ActionDragOver, "number-2"},
		{ActionDragOver, "number-3"},
		{ActionDragOver, "number-2"},
		{ActionDrop, PlaceholderID},
	}
}
