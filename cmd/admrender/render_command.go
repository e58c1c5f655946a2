package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/cwbudde/admrender/bw64"
	"github.com/cwbudde/admrender/internal/config"
	"github.com/cwbudde/admrender/internal/logging"
	"github.com/cwbudde/admrender/render"
)

var errInputLocked = errors.New("input file is being rendered by another process")

type renderFlags struct {
	layout          string
	element         string
	gains           []string
	continueOnError bool
	strict          bool
	progress        bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render INPUT [OUTPUT_DIR]",
		Short: "Render the programmes or objects of an ADM BW64 file",
		Long: `Render every audioProgramme of INPUT (or every top-level audioObject when
the file has no programmes) to one BW64 file per element in OUTPUT_DIR.

Gains are given in dB per element ID and multiply down the programme,
content and object hierarchy.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := renderOptions(cmd, cfg, flags, args)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logger, _ = logging.WithRunID(logger)
			opts.Logger = logger

			return runRender(cmd, args[0], opts, flags.progress)
		},
	}

	cmd.Flags().StringVarP(&flags.layout, "layout", "l", "", "Output loudspeaker layout, e.g. 0+5+0")
	cmd.Flags().StringVarP(&flags.element, "element", "e", "", "Render only the programme or object with this ID")
	cmd.Flags().StringArrayVarP(&flags.gains, "gain", "g", nil, "Gain override as ID=dB (repeatable)")
	cmd.Flags().BoolVar(&flags.continueOnError, "continue-on-error", false, "Continue with the next element when one fails")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Fail when --element matches nothing")
	cmd.Flags().BoolVar(&flags.progress, "progress", true, "Show a progress bar when stdout is a terminal")

	return cmd
}

// renderOptions merges the configuration with the command line. Flags that
// were set explicitly win.
func renderOptions(cmd *cobra.Command, cfg *config.Config, flags renderFlags, args []string) (render.Options, error) {
	opts := render.Options{
		Layout:          cfg.Render.Layout,
		OutputDir:       cfg.Render.OutputDir,
		ElementID:       cfg.Render.ElementID,
		ContinueOnError: cfg.Render.ContinueOnError,
		StrictSelection: cfg.Render.StrictSelection,
		Gains:           make(render.GainOverrides, len(cfg.Gains)),
	}
	for id, db := range cfg.Gains {
		opts.Gains.SetDB(id, db)
	}

	changed := cmd.Flags().Changed
	if changed("layout") {
		opts.Layout = strings.TrimSpace(flags.layout)
	}
	if changed("element") {
		opts.ElementID = strings.TrimSpace(flags.element)
	}
	if changed("continue-on-error") {
		opts.ContinueOnError = flags.continueOnError
	}
	if changed("strict") {
		opts.StrictSelection = flags.strict
	}
	if len(args) > 1 {
		dir, err := config.ExpandPath(args[1])
		if err != nil {
			return render.Options{}, err
		}
		opts.OutputDir = dir
	}

	overrides, err := render.ParseGainMapping(flags.gains...)
	if err != nil {
		return render.Options{}, err
	}
	for id, g := range overrides {
		opts.Gains.Set(id, g)
	}

	return opts, nil
}

func runRender(cmd *cobra.Command, input string, opts render.Options, showProgress bool) error {
	// flock creates missing files.
	if _, err := os.Stat(input); err != nil {
		return err
	}

	lock := flock.New(input)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock input: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", errInputLocked, input)
	}
	defer func() { _ = lock.Unlock() }()

	src, err := bw64.Open(input)
	if err != nil {
		return err
	}
	defer src.Close()

	out := cmd.OutOrStdout()
	var bars *progressBars
	if showProgress && isTerminal(out) {
		bars = newProgressBars(out)
		opts.Progress = bars.update
	}

	r, err := render.New(src, opts)
	if err != nil {
		return err
	}

	opts.Logger.Info("rendering",
		slog.String("input", filepath.Base(input)),
		slog.String("layout", r.Layout().Name),
		slog.Int("channels", src.Channels()),
		slog.Int("sample_rate", src.SampleRate()),
	)

	start := time.Now()
	results, err := r.Process(cmd.Context())
	bars.finish()
	printResults(out, results, src.SampleRate())

	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "Nothing rendered")
		return nil
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	opts.Logger.Info("render complete",
		slog.Int("targets", len(results)),
		slog.Int("failed", failed),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	if failed > 0 {
		return fmt.Errorf("%d of %d elements failed to render", failed, len(results))
	}
	return nil
}

func printResults(w io.Writer, results []render.Result, sampleRate int) {
	if len(results) == 0 {
		return
	}

	var total int
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		total += res.Frames
		status := "ok"
		if res.Err != nil {
			status = res.Err.Error()
		}
		duration := ""
		if sampleRate > 0 {
			duration = (time.Duration(res.Frames) * time.Second / time.Duration(sampleRate)).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			res.Target.Kind.String(),
			res.Target.ID,
			res.Target.Name,
			humanize.Comma(int64(res.Frames)),
			duration,
			res.OutputPath,
			status,
		})
	}

	if len(rows) == 1 {
		fmt.Fprintln(w, renderTable(resultColumns, rows))
		return
	}
	fmt.Fprintln(w, renderTable(resultColumns, rows, "Total", "", "", humanize.Comma(int64(total))))
}

func formatHz(rate int) string {
	return strconv.Itoa(rate) + " Hz"
}
