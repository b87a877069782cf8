package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/internal/filter"
	"github.com/bebsworthy/pathsieve/internal/hoststate"
	"github.com/bebsworthy/pathsieve/internal/reporter"
	"github.com/bebsworthy/pathsieve/internal/toggles"
)

type classifyOptions struct {
	path        string
	identifier  string
	buffer      string
	index       int
	format      string
	togglesFile string
	watch       bool
	stream      bool
	parallel    int
	player      string
	libraryTab  bool
	failOnBlock bool
	stats       bool
	metricsAddr string
}

func newClassifyCmd() *cobra.Command {
	opts := &classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Decide whether components should be hidden",
		Long: `Classify one request given by flags, or a stream of JSON lines on stdin.

Each stdin line is an object with "path" and optional "identifier",
"buffer" and "contentIndex" fields. One verdict is written per request.

By default stdin is read to the end and classified in parallel. With
--stream every line is classified as soon as it is read, and --watch
reloads the toggles file while the stream is open.`,
		Example: `  # Classify a single path
  pathsieve classify --path "feed.eml|ads_video_with_context.eml"

  # Flyout menu items are matched on their payload
  pathsieve classify --player watch_while_maximized --path "menu_item.eml" --buffer "yt_outline_gear"

  # Classify a file of requests as JSON, failing if anything is blocked
  pathsieve classify --format json --fail-on-block < requests.jsonl

  # Stream requests, reload toggles on change and expose metrics
  pathsieve classify --stream --toggles toggles.json --watch --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.path, "path", "", "Structural path of a single request")
	f.StringVar(&opts.identifier, "identifier", "", "Component identifier of the single request")
	f.StringVar(&opts.buffer, "buffer", "", "Raw payload of the single request")
	f.IntVar(&opts.index, "index", 0, "Content index of the single request")
	f.StringVar(&opts.format, "format", "text", "Output format (text or json)")
	f.StringVar(&opts.togglesFile, "toggles", "", "Toggles file to apply over the defaults")
	f.BoolVar(&opts.watch, "watch", false, "Reload the toggles file when it changes (with --stream)")
	f.BoolVar(&opts.stream, "stream", false, "Classify stdin line by line")
	f.IntVar(&opts.parallel, "parallel", 4, "Maximum concurrent classifications for batch input")
	f.StringVar(&opts.player, "player", "", "Observed player type, e.g. watch_while_maximized")
	f.BoolVar(&opts.libraryTab, "library-tab", false, "Whether the library tab is selected")
	f.BoolVar(&opts.failOnBlock, "fail-on-block", false, "Exit with code 2 when any request is blocked")
	f.BoolVar(&opts.stats, "stats", false, "Print per-group hit counts when done")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	return cmd
}

func runClassify(cmd *cobra.Command, opts *classifyOptions) error {
	format, err := reporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.watch && (opts.togglesFile == "" || !opts.stream) {
		return fmt.Errorf("--watch needs --toggles and --stream")
	}

	state := hoststate.New()
	if opts.player != "" {
		pt, err := hoststate.ParsePlayerType(opts.player)
		if err != nil {
			return err
		}
		state.SetPlayerType(pt)
	}
	state.SetLibraryTabSelected(opts.libraryTab)

	res, err := loadConfiguration()
	if err != nil {
		return err
	}

	var closeRequests atomic.Int64
	e, err := newEngine(res, state, func() { closeRequests.Add(1) })
	if err != nil {
		return err
	}

	if opts.togglesFile != "" {
		if err := e.toggles.LoadFile(opts.togglesFile); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.watch {
		err := e.toggles.Watch(ctx, opts.togglesFile, toggles.WithReloadHook(func(err error) {
			if err != nil {
				debug.LogError(err, "reloading toggles")
				return
			}
			debug.Log("Toggles reloaded from %s", opts.togglesFile)
		}))
		if err != nil {
			return err
		}
	}

	if opts.metricsAddr != "" {
		stop, err := serveMetrics(opts.metricsAddr, e.metrics)
		if err != nil {
			return err
		}
		defer stop()
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	rep := &reporter.VerdictReporter{
		Format:      format,
		Color:       format == reporter.FormatText && useColor(out),
		FailOnBlock: opts.failOnBlock,
	}

	var report *reporter.ReportResult
	switch {
	case cmd.Flags().Changed("path"):
		report = classifySingle(e, rep, opts, cmd.Flags().Changed("buffer"))
	case opts.stream:
		report, err = classifyStream(ctx, e, rep, cmd.InOrStdin(), out)
	default:
		report, err = classifyBatch(ctx, e, rep, cmd.InOrStdin(), opts.parallel)
	}
	// A cancelled run still reports what it decided before stopping
	if report != nil {
		_, _ = io.WriteString(out, report.Stdout) //nolint:errcheck
		if report.Stderr != "" {
			_, _ = fmt.Fprintln(errOut, report.Stderr) //nolint:errcheck
		}
	}
	if err != nil {
		return err
	}

	if n := closeRequests.Load(); n > 0 {
		_, _ = fmt.Fprintf(errOut, "%d fullscreen ad close request(s)\n", n) //nolint:errcheck
	}
	if opts.stats {
		writeStats(errOut, e)
	}

	if report.ExitCode != 0 {
		debug.Log("Exit code: %d", report.ExitCode)
		osExit(report.ExitCode)
	}
	return nil
}

func classifySingle(e *engine, rep *reporter.VerdictReporter, opts *classifyOptions, hasBuffer bool) *reporter.ReportResult {
	req := filter.Request{
		Identifier:   opts.identifier,
		Path:         opts.path,
		ContentIndex: opts.index,
	}
	if hasBuffer {
		req.Buffer = []byte(opts.buffer)
	}

	start := time.Now()
	d := e.registry.Decide(&req)
	elapsed := time.Since(start)
	e.metrics.ObserveDecision(d, elapsed)

	result := &filter.BatchResult{Decisions: []filter.Decision{d}, TotalTime: elapsed}
	if d == filter.Block {
		result.Blocked = 1
	}
	return rep.Report([]filter.Request{req}, result)
}

func classifyBatch(ctx context.Context, e *engine, rep *reporter.VerdictReporter, in io.Reader, parallel int) (*reporter.ReportResult, error) {
	requests, err := reporter.ReadRequests(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	debug.Log("Classifying %d requests with parallelism %d", len(requests), parallel)

	result, err := filter.NewParallelClassifier(e.registry, parallel).Classify(ctx, requests, nil)
	if result == nil {
		return nil, err
	}
	e.metrics.ObserveBatch(result)
	debug.LogTiming("batch classification", result.TotalTime)

	if err != nil {
		debug.Log("Batch stopped early: %d of %d requests skipped", result.Skipped, len(requests))
		err = fmt.Errorf("classification interrupted: %w", err)
	}
	return rep.Report(requests, result), err
}

// classifyStream writes each verdict as soon as its line is read, so the
// returned report only carries the summary
func classifyStream(ctx context.Context, e *engine, rep *reporter.VerdictReporter, in io.Reader, out io.Writer) (*reporter.ReportResult, error) {
	total := &filter.BatchResult{}
	count := 0
	start := time.Now()

	err := reporter.ScanRequests(in, func(_ int, req filter.Request) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := time.Now()
		d := e.registry.Decide(&req)
		e.metrics.ObserveDecision(d, time.Since(t))

		if d == filter.Block {
			total.Blocked++
		}

		_, err := io.WriteString(out, rep.Line(count, req, d))
		count++
		return err
	})

	total.TotalTime = time.Since(start)
	res := &reporter.ReportResult{Stderr: reporter.Summary(count, total)}
	if rep.FailOnBlock && total.Blocked > 0 {
		res.ExitCode = 2
	}

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("classification interrupted: %w", err)
	default:
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
}

// useColor reports whether w is a terminal that accepts colors
func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeStats(w io.Writer, e *engine) {
	_, _ = fmt.Fprintln(w, "\nGroup hits:") //nolint:errcheck
	for _, s := range e.registry.Stats() {
		if s.Hits == 0 {
			continue
		}
		state := "on"
		if !s.Enabled {
			state = "off"
		}
		_, _ = fmt.Fprintf(w, "  %-20s %-24s %-10s %-3s %d\n", s.Filter, s.Group, s.Kind, state, s.Hits) //nolint:errcheck
	}

	if e.catalog == nil {
		return
	}
	menu := e.catalog.PlaybackSpeedMenu
	if menu.RateSelectorVisible() || menu.OldMenuVisible() {
		_, _ = fmt.Fprintf(w, "\nPlayback speed menu: rate selector=%t, old menu=%t\n", //nolint:errcheck
			menu.RateSelectorVisible(), menu.OldMenuVisible())
	}
}
