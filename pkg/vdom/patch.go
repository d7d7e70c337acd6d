package vdom

import (
	"fmt"
	"strings"
)

// ChangeOp is the type of a Change.
type ChangeOp uint8

const (
	OpReplaceText      ChangeOp = 0x01 // Set text content
	OpReplaceInnerHTML ChangeOp = 0x02 // Set raw markup
	OpUpdate           ChangeOp = 0x03 // Remove then add attributes
	OpMove             ChangeOp = 0x04 // Relocate a keyed run
	OpRemoveKey        ChangeOp = 0x05 // Remove a keyed run
	OpReplace          ChangeOp = 0x06 // Remove a run, insert one node
	OpInsert           ChangeOp = 0x07 // Insert nodes before an index
	OpRemove           ChangeOp = 0x08 // Remove a run by index
)

// String returns the string representation of the ChangeOp.
func (op ChangeOp) String() string {
	switch op {
	case OpReplaceText:
		return "ReplaceText"
	case OpReplaceInnerHTML:
		return "ReplaceInnerHTML"
	case OpUpdate:
		return "Update"
	case OpMove:
		return "Move"
	case OpRemoveKey:
		return "RemoveKey"
	case OpReplace:
		return "Replace"
	case OpInsert:
		return "Insert"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

// Change is a single mutation of the node a Patch targets. Fields are used
// according to Op:
//
//	ReplaceText       Content
//	ReplaceInnerHTML  Content
//	Update            Added, Removed
//	Move              Key, Before, Count
//	RemoveKey         Key, Count
//	Replace           From, Count, Node
//	Insert            Nodes, Before
//	Remove            From, Count
type Change struct {
	Op      ChangeOp
	Content string
	Added   []Attribute
	Removed []Attribute
	Key     string
	Before  int
	From    int
	Count   int
	Node    *VNode
	Nodes   []*VNode
}

func (c Change) String() string {
	switch c.Op {
	case OpReplaceText, OpReplaceInnerHTML:
		return fmt.Sprintf("%s(%q)", c.Op, c.Content)
	case OpUpdate:
		return fmt.Sprintf("Update(+%s -%s)", attrNames(c.Added), attrNames(c.Removed))
	case OpMove:
		return fmt.Sprintf("Move(%q before=%d count=%d)", c.Key, c.Before, c.Count)
	case OpRemoveKey:
		return fmt.Sprintf("RemoveKey(%q count=%d)", c.Key, c.Count)
	case OpReplace:
		return fmt.Sprintf("Replace(from=%d count=%d %s)", c.From, c.Count, c.Node.Kind)
	case OpInsert:
		return fmt.Sprintf("Insert(%d nodes before=%d)", len(c.Nodes), c.Before)
	case OpRemove:
		return fmt.Sprintf("Remove(from=%d count=%d)", c.From, c.Count)
	default:
		return c.Op.String()
	}
}

func attrNames(attrs []Attribute) string {
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Name
	}
	return "[" + strings.Join(names, " ") + "]"
}

func ReplaceTextChange(content string) Change {
	return Change{Op: OpReplaceText, Content: content}
}

func ReplaceInnerHTMLChange(html string) Change {
	return Change{Op: OpReplaceInnerHTML, Content: html}
}

func UpdateChange(added, removed []Attribute) Change {
	return Change{Op: OpUpdate, Added: added, Removed: removed}
}

func MoveChange(key string, before, count int) Change {
	return Change{Op: OpMove, Key: key, Before: before, Count: count}
}

func RemoveKeyChange(key string, count int) Change {
	return Change{Op: OpRemoveKey, Key: key, Count: count}
}

func ReplaceChange(from, count int, node *VNode) Change {
	return Change{Op: OpReplace, From: from, Count: count, Node: node}
}

func InsertChange(nodes []*VNode, before int) Change {
	return Change{Op: OpInsert, Nodes: nodes, Before: before}
}

func RemoveChange(from, count int) Change {
	return Change{Op: OpRemove, From: from, Count: count}
}

// Patch is a recursive edit tree. Changes apply to the target node in
// order, then Removed trailing children are trimmed, then each child Patch
// applies to the child at its Index.
type Patch struct {
	Index    int
	Removed  int
	Changes  []Change
	Children []*Patch
}

// IsEmpty reports whether applying the patch would do nothing.
func (p *Patch) IsEmpty() bool {
	return p == nil || (p.Removed == 0 && len(p.Changes) == 0 && len(p.Children) == 0)
}

// Walk calls fn for p and every descendant patch, depth first.
func (p *Patch) Walk(fn func(*Patch)) {
	if p == nil {
		return
	}
	stack := []*Patch{p}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(cur)
		for i := len(cur.Children) - 1; i >= 0; i-- {
			stack = append(stack, cur.Children[i])
		}
	}
}

// CountChanges tallies changes in the whole tree by op.
func (p *Patch) CountChanges() map[ChangeOp]int {
	counts := make(map[ChangeOp]int)
	p.Walk(func(q *Patch) {
		for _, c := range q.Changes {
			counts[c.Op]++
		}
	})
	return counts
}

// String renders the patch tree for debugging.
func (p *Patch) String() string {
	var sb strings.Builder
	p.format(&sb, 0)
	return sb.String()
}

func (p *Patch) format(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%spatch index=%d removed=%d\n", indent, p.Index, p.Removed)
	for _, c := range p.Changes {
		fmt.Fprintf(sb, "%s  %s\n", indent, c)
	}
	for _, child := range p.Children {
		child.format(sb, depth+1)
	}
}
