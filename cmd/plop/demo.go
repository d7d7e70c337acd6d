package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/plop/internal/demo"
	"github.com/vango-dev/plop/internal/errors"
	"github.com/vango-dev/plop/pkg/app"
	"github.com/vango-dev/plop/pkg/protocol"
	"github.com/vango-dev/plop/pkg/vdom"
)

type demoOptions struct {
	items  int
	steps  []string
	binary bool
	force  bool
	quiet  bool
}

func demoCmd(flags *globalFlags) *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Replay a drag-and-drop script headlessly",
		Long: `Replay a drag-and-drop script against the lift-and-plop list and
print the patch each step produced together with the resulting HTML.

Steps are written action:target, where action is one of dragstart,
dragover, drop or dragend and target is an item id. Without --step the
first item is dragged over the third and dropped.

With --binary the patches are written as length-prefixed frames instead,
the last one flagged final.

Examples:
  plop demo
  plop demo --items 6 --step dragstart:number-5 --step dragover:number-0 --step drop:placeholder
  plop demo --binary > patches.bin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), flags, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.items, "items", "n", demo.DefaultItems, "Number of list items")
	cmd.Flags().StringArrayVarP(&opts.steps, "step", "s", nil, "Step to replay, repeatable (action:target)")
	cmd.Flags().BoolVar(&opts.binary, "binary", false, "Write binary patch frames")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Write binary frames even to a terminal")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Print only the HTML after each step")

	return cmd
}

func runDemo(out io.Writer, flags *globalFlags, opts demoOptions) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	script := demo.DefaultScript()
	if len(opts.steps) > 0 {
		if script, err = demo.ParseScript(opts.steps); err != nil {
			return err
		}
	}

	if opts.binary && !opts.force {
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			return errors.Newf(errors.CategoryCLI, "refusing to write binary frames to a terminal").
				WithSuggestion("Redirect the output to a file or pass --force")
		}
	}

	play := demo.PlayConfig{
		Config: demoConfig(cfg, opts.items),
		Options: []app.Option{
			app.WithLogger(loggerFor(cfg)),
			app.WithRemoteEvents(cfg.Mount.RemoteEvents),
			app.WithTracer(tracerFor(cfg)),
		},
	}

	remaining := len(script) + 1
	return demo.Play(script, play, func(s demo.Snapshot) error {
		remaining--
		if opts.binary {
			return writeFrames(out, s.Patches, remaining == 0)
		}
		printSnapshot(out, s, opts.quiet)
		return nil
	})
}

func writeFrames(w io.Writer, patches []*vdom.Patch, final bool) error {
	for i, p := range patches {
		var flags protocol.FrameFlags
		if final && i == len(patches)-1 {
			flags |= protocol.FlagFinal
		}
		if err := protocol.WritePatch(w, p, flags); err != nil {
			return err
		}
	}
	return nil
}

func printSnapshot(w io.Writer, s demo.Snapshot, quiet bool) {
	title := "mount"
	if s.Step != (demo.Step{}) {
		title = s.Step.String()
	}

	changes := 0
	for _, p := range s.Patches {
		for _, n := range p.CountChanges() {
			changes += n
		}
	}
	fmt.Fprintf(w, "── %s ─ %s ─ %d changes\n", title, strings.Join(s.IDs, " "), changes)
	if !quiet {
		for _, p := range s.Patches {
			fmt.Fprint(w, p.String())
		}
	}
	fmt.Fprintln(w, s.HTML)
	fmt.Fprintln(w)
}
