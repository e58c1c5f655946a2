package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"

	"github.com/cwbudde/admrender/adm"
	"github.com/cwbudde/admrender/bw64"
	"github.com/cwbudde/admrender/ear"
)

// BlockSize is the number of frames mixed per block.
const BlockSize = 4096

// Source is the input a Renderer streams from. *bw64.Reader implements it.
type Source interface {
	Channels() int
	SampleRate() int
	BitDepth() int
	FormatTag() uint16
	Extensible() bool
	FrameCount() int
	AXML() *bw64.AXMLChunk
	CHNA() *bw64.ChnaChunk
	Bext() *bw64.BroadcastExtension
	ReadBlock(buf *audio.FloatBuffer, maxFrames int) (int, error)
	EOF() bool
	Rewind() error
}

// State is the lifecycle position of a Renderer within one target.
type State int

const (
	StateIdle State = iota
	StateInitialized
	StateStreaming
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitialized:
		return "initialized"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Renderer.
type Options struct {
	// Layout is the BS.2051 output layout name, e.g. "0+2+0".
	Layout    string
	OutputDir string
	// ElementID selects a single programme or object to render.
	ElementID string
	Gains     GainOverrides

	// ContinueOnError moves on to the next target when one fails.
	ContinueOnError bool
	// StrictSelection makes an ElementID matching nothing an error.
	StrictSelection bool

	Logger   *slog.Logger
	Progress func(Progress)
}

// Progress reports streaming progress of one target.
type Progress struct {
	Target      Target
	Frames      int
	TotalFrames int
}

// Result describes one rendered target.
type Result struct {
	Target     Target
	OutputPath string
	Frames     int
	Err        error
}

// Renderer renders the targets of one input file. It reuses the source for
// every target, rewinding it after each pass, so it must not be used
// concurrently.
type Renderer struct {
	src    Source
	doc    *adm.Document
	chna   *bw64.ChnaChunk
	layout ear.Layout
	opts   Options
	logger *slog.Logger

	res       resolver
	renderers []ObjectRenderer
	state     State
	// output paths claimed so far, lower-cased
	outputs   map[string]struct{}

	mix *mixer
	in  *audio.FloatBuffer
	out *audio.FloatBuffer
}

// New parses the source's ADM metadata and prepares a renderer for the
// configured layout. A source without an axml chunk yields
// bw64.ErrMissingChunk.
func New(src Source, opts Options) (*Renderer, error) {
	axml := src.AXML()
	if axml == nil {
		return nil, fmt.Errorf("%w: axml", bw64.ErrMissingChunk)
	}

	doc, err := adm.ParseXML(axml.Reader())
	if err != nil {
		return nil, err
	}

	layout, err := ear.GetLayout(opts.Layout)
	if err != nil {
		return nil, err
	}

	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Renderer{
		src:     src,
		doc:     doc,
		chna:    src.CHNA(),
		layout:  layout,
		opts:    opts,
		logger:  logger,
		outputs: make(map[string]struct{}),
		mix:     newMixer(src.Channels(), layout.NumChannels(), BlockSize),
		in:      bw64.NewBlockBuffer(src.Channels(), BlockSize),
		out:     bw64.NewBlockBuffer(layout.NumChannels(), BlockSize),
	}

	r.res = resolver{
		doc:           doc,
		chna:          r.chna,
		calc:          ear.NewDirectSpeakersGainCalculator(layout),
		inputChannels: src.Channels(),
	}

	return r, nil
}

func (r *Renderer) Document() *adm.Document { return r.doc }

func (r *Renderer) Layout() ear.Layout { return r.layout }

func (r *Renderer) State() State { return r.state }

// Renderers returns the object renderers of the current target.
func (r *Renderer) Renderers() []ObjectRenderer { return r.renderers }

// Targets returns the targets Process renders.
func (r *Renderer) Targets() ([]Target, error) {
	targets := SelectTargets(r.doc, r.opts.ElementID)

	switch {
	case len(targets) > 0:
		return targets, nil
	case r.opts.ElementID != "":
		if r.opts.StrictSelection {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, r.opts.ElementID)
		}

		r.logger.Warn("no programme or object matches the selected element", "element_id", r.opts.ElementID)
	case r.chna.NumUIDs() > 0:
		r.logger.Warn("file has track identities but no programmes or objects; chna-only rendering is not implemented",
			"tracks", r.chna.NumTracks())
	default:
		r.logger.Warn("nothing to render")
	}

	return nil, nil
}

// Process renders every target. Without ContinueOnError it stops at the
// first failing target and returns its error along with the results so far.
func (r *Renderer) Process(ctx context.Context) ([]Result, error) {
	targets, err := r.Targets()
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 {
		return nil, nil
	}

	err = os.MkdirAll(r.opts.OutputDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	clear(r.outputs)

	results := make([]Result, 0, len(targets))

	for _, t := range targets {
		res := r.Render(ctx, t)
		results = append(results, res)

		if res.Err == nil {
			continue
		}

		if ctx.Err() != nil || !r.opts.ContinueOnError {
			return results, fmt.Errorf("%s: %w", t.ID, res.Err)
		}

		r.logger.Warn("skipping target", "target", t.Kind.String(), "element_id", t.ID, "error", res.Err)
	}

	return results, nil
}

// Init builds the object renderers of t with their cumulative gain
// overrides applied.
func (r *Renderer) Init(t Target) error {
	if r.state == StateStreaming {
		return errBadState
	}

	r.renderers = r.renderers[:0]
	r.state = StateIdle

	for _, og := range targetObjects(t, r.opts.Gains) {
		obj, err := r.res.objectRenderer(og.object)
		if err != nil {
			return err
		}

		if len(obj.tracks) == 0 {
			r.logger.Warn("object has no pack format, nothing to mix", "element_id", obj.ObjectID)
		}

		obj.ApplyUserGain(og.gain)
		r.logger.Debug("object renderer ready", "element_id", obj.ObjectID, "tracks", obj.tracks, "gain", og.gain)

		r.renderers = append(r.renderers, obj)
	}

	r.state = StateInitialized

	return nil
}

// Render renders one target to its output file.
func (r *Renderer) Render(ctx context.Context, t Target) Result {
	res := Result{Target: t}

	err := r.Init(t)
	if err != nil {
		res.Err = err
		return res
	}

	meta, err := synthesize(t, r.layout, r.src.SampleRate(), r.src.BitDepth())
	if err != nil {
		res.Err = err
		return res
	}

	res.OutputPath = r.outputPath(t)
	logger := r.logger.With("target", t.Kind.String(), "element_id", t.ID, "output", res.OutputPath)
	logger.Info("rendering target", "name", t.Name, "objects", len(r.renderers), "layout", r.layout.Name)

	w, err := bw64.Create(res.OutputPath, bw64.WriterOptions{
		Channels:   r.layout.NumChannels(),
		SampleRate: r.src.SampleRate(),
		BitDepth:   r.src.BitDepth(),
		FormatTag:  r.src.FormatTag(),
		Extensible: r.src.Extensible(),
		Chna:       meta.CHNA,
		Axml:       meta.AXML,
		Bext:       r.outputBext(),
	})
	if err != nil {
		r.state = StateDone
		res.Err = err

		return res
	}

	res.Frames, err = r.stream(ctx, t, w)
	if err != nil {
		abortErr := w.Abort()
		if abortErr != nil {
			logger.Warn("failed to remove partial output", "error", abortErr)
		}

		res.Err = err

		return res
	}

	err = w.Close()
	if err != nil {
		res.Err = fmt.Errorf("failed to finalise %s: %w", res.OutputPath, err)
		return res
	}

	logger.Info("target rendered", "frames", res.Frames)

	return res
}

// stream mixes the whole source into w and rewinds the source afterwards,
// whether or not streaming succeeded.
func (r *Renderer) stream(ctx context.Context, t Target, w *bw64.Writer) (frames int, err error) {
	r.state = StateStreaming

	defer func() {
		rerr := r.src.Rewind()
		if rerr != nil && err == nil {
			err = fmt.Errorf("failed to rewind source: %w", rerr)
		}

		r.state = StateDone
	}()

	total := r.src.FrameCount()

	for !r.src.EOF() {
		err = ctx.Err()
		if err != nil {
			return frames, err
		}

		n, rerr := r.src.ReadBlock(r.in, BlockSize)
		if rerr != nil {
			return frames, fmt.Errorf("failed to read block: %w", rerr)
		}

		if n == 0 {
			break
		}

		r.mix.mix(r.in, n, r.renderers, r.out)

		err = w.WriteBlock(r.out, n)
		if err != nil {
			return frames, fmt.Errorf("failed to write block: %w", err)
		}

		frames += n

		if r.opts.Progress != nil {
			r.opts.Progress(Progress{Target: t, Frames: frames, TotalFrames: total})
		}
	}

	return frames, nil
}

// outputBext copies the input's broadcast extension and records the
// rendering in its coding history.
func (r *Renderer) outputBext() *bw64.BroadcastExtension {
	in := r.src.Bext()
	if in == nil {
		return nil
	}

	out := in.Clone()
	out.AppendCodingHistory(fmt.Sprintf("A=%s,F=%d,W=%d,M=%s,T=admrender",
		codingAlgorithm(r.src.FormatTag()), r.src.SampleRate(), r.src.BitDepth(), r.layout.Name))

	return out
}

func codingAlgorithm(formatTag uint16) string {
	if formatTag == bw64.FormatIEEEFloat {
		return "FLOAT"
	}

	return "PCM"
}

// IsUnsupported reports whether err is an unsupported-configuration error.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// outputPath names the file of t after its sanitized name. Targets whose
// names fold to a path already written by this renderer get their element
// ID appended, so no output overwrites another.
func (r *Renderer) outputPath(t Target) string {
	base := SanitizeFileName(t.Name)
	path := filepath.Join(r.opts.OutputDir, base+".wav")

	for n := 1; r.claimed(path); n++ {
		suffix := "_" + t.ID
		if n > 1 {
			suffix = fmt.Sprintf("_%s_%d", t.ID, n)
		}

		path = filepath.Join(r.opts.OutputDir, base+suffix+".wav")
	}

	r.outputs[strings.ToLower(path)] = struct{}{}

	return path
}

func (r *Renderer) claimed(path string) bool {
	_, ok := r.outputs[strings.ToLower(path)]
	return ok
}
