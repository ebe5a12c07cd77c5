package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/guidepost/internal/presentation/tui"
	"github.com/aretw0/guidepost/pkg/ports"
	"github.com/aretw0/guidepost/pkg/runner"
)

// WalkOptions configures RunWalk.
type WalkOptions struct {
	SessionID string
	TourID    string

	// JSON switches to JSON-Lines IO for scripted use.
	JSON bool

	// Missing lists target selectors to treat as absent from the page.
	Missing []string

	// Fresh deletes the stored session before starting.
	Fresh bool

	MaxInputSize int
}

// RunWalk presents a tour in the terminal and saves the session when the walk ends.
func RunWalk(ctx context.Context, rt *Runtime, opts WalkOptions, in io.Reader, out io.Writer) error {
	if opts.SessionID == "" {
		opts.SessionID = "cli"
	}
	g := rt.Guide

	if opts.Fresh {
		if err := g.Sessions().Delete(ctx, opts.SessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	handler := newIOHandler(opts, in, out)
	r := runner.NewRunner(
		runner.WithInputHandler(handler),
		runner.WithLogger(rt.Logger),
		runner.WithResolver(missingResolver(opts.Missing)),
	)

	if !opts.JSON {
		tui.PrintBanner(out)
		printSystemMessage(out, "Walking '%s' (session '%s').", opts.TourID, opts.SessionID)
	}

	s, err := g.Walk(ctx, opts.SessionID, opts.TourID, r)
	if err != nil {
		return err
	}
	if !opts.JSON && s.Active {
		printSystemMessage(out, "Paused at step %d of '%s'.", s.CurrentIndex+1, s.Tag)
	}
	return nil
}

func newIOHandler(opts WalkOptions, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		h := runner.NewJSONHandler(in, out)
		h.MaxInputSize = runner.InputLimit(opts.MaxInputSize)
		return h
	}

	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = tui.IsTerminal(f)
	}
	return runner.NewTextHandler(in, out,
		runner.WithTextHandlerRenderer(tui.NewRenderer(interactive)),
		runner.WithMaxInputSize(opts.MaxInputSize),
	)
}

func missingResolver(missing []string) ports.TargetResolver {
	absent := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		if m = strings.TrimSpace(m); m != "" {
			absent[m] = struct{}{}
		}
	}
	return ports.TargetResolverFunc(func(selector string) bool {
		_, gone := absent[selector]
		return !gone
	})
}
