// Package processor runs the haversine pipeline: read a pairs document, parse
// it with jsonparse, average the pair distances and check the result against a
// reference distance file and other JSON decoders.
package processor

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/Neumenon/haversine/distfile"
	"github.com/Neumenon/haversine/haversine"
	"github.com/Neumenon/haversine/internal/crosscheck"
	"github.com/Neumenon/haversine/internal/fileio"
	"github.com/Neumenon/haversine/jsonparse"
)

// DefaultTolerance is the largest accepted difference between a computed and
// a reference distance.
const DefaultTolerance = 1e-9

// Config configures a processor run.
type Config struct {
	JSONPath      string
	DistancesPath string
	CrossCheck    []string
	Tolerance     float64
	Radius        float64
	MaxDepth      int
}

// RegisterFlags registers the processor flags on app.
func (c *Config) RegisterFlags(app *kingpin.Application) {
	app.Flag("json", "JSON file of coordinate pairs. May be gzip or zstd compressed.").Short('j').Required().StringVar(&c.JSONPath)
	app.Flag("floats", "Reference distance file of little-endian float64 values.").Short('f').StringVar(&c.DistancesPath)
	app.Flag("cross-check", "Also decode the input with this decoder and compare pairs. Repeatable.").EnumsVar(&c.CrossCheck, crosscheck.Names()...)
	app.Flag("tolerance", "Accepted absolute difference against reference values.").Default(strconv.FormatFloat(DefaultTolerance, 'g', -1, 64)).Float64Var(&c.Tolerance)
	app.Flag("radius", "Sphere radius for distances.").Default(strconv.FormatFloat(haversine.EarthRadius, 'f', -1, 64)).Float64Var(&c.Radius)
	app.Flag("max-depth", "Maximum nesting depth accepted by the parser.").Default(strconv.Itoa(jsonparse.MaxDepth)).IntVar(&c.MaxDepth)
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.JSONPath == "" {
		return errors.New("no JSON input given")
	}
	if c.Tolerance < 0 {
		return errors.Errorf("tolerance must not be negative, got %v", c.Tolerance)
	}
	if c.Radius <= 0 {
		return errors.Errorf("radius must be positive, got %v", c.Radius)
	}
	for _, name := range c.CrossCheck {
		if _, err := crosscheck.Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// Timing is the wall time spent in one phase.
type Timing struct {
	Phase    string
	Duration time.Duration
}

// Reference summarizes the comparison against a distance file.
type Reference struct {
	Count      int
	Average    float64
	MaxError   float64
	Mismatches int
}

// OK reports whether every distance was within tolerance.
func (r *Reference) OK() bool {
	return r == nil || r.Mismatches == 0
}

// CrossCheckResult is the outcome of one cross-check decoder.
type CrossCheckResult struct {
	Decoder  string
	Duration time.Duration
	Err      error
}

// Result describes a processor run.
type Result struct {
	InputBytes      int
	CompressedBytes int64
	Tokens          int
	Pairs           int
	Average         float64
	Reference       *Reference
	CrossCheck      []CrossCheckResult
	Timings         []Timing
}

// Total returns the sum of all phase timings.
func (r *Result) Total() time.Duration {
	var total time.Duration
	for _, t := range r.Timings {
		total += t.Duration
	}
	return total
}

// OK reports whether the reference and cross-check comparisons all passed.
func (r *Result) OK() bool {
	if !r.Reference.OK() {
		return false
	}
	for _, c := range r.CrossCheck {
		if c.Err != nil {
			return false
		}
	}
	return true
}

// Processor reads inputs from a filesystem and runs the pipeline.
type Processor struct {
	fs     afero.Fs
	logger log.Logger
	now    func() time.Time
}

// New creates a Processor.
func New(fs afero.Fs, logger log.Logger) *Processor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Processor{fs: fs, logger: logger, now: time.Now}
}

// phase runs fn and records its duration under name.
func (p *Processor) phase(ctx context.Context, res *Result, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := p.now()
	err := fn()
	d := p.now().Sub(start)
	res.Timings = append(res.Timings, Timing{Phase: name, Duration: d})
	level.Debug(p.logger).Log("msg", "phase done", "phase", name, "duration", d)
	return err
}

// Run executes the pipeline for cfg. Parse and I/O failures are returned as
// errors; disagreements with the reference file or cross-check decoders are
// reported in the Result.
func (p *Processor) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Radius == 0 {
		cfg.Radius = haversine.EarthRadius
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		res    = &Result{}
		data   []byte
		input  string
		tokens []jsonparse.Token
		root   *jsonparse.Value
		pairs  []haversine.Pair
	)

	err := p.phase(ctx, res, "read", func() error {
		size, err := fileio.Size(p.fs, cfg.JSONPath)
		if err != nil {
			return err
		}
		res.CompressedBytes = size
		data, err = fileio.ReadFile(p.fs, cfg.JSONPath)
		if err != nil {
			return err
		}
		// Tokens and values reference this string for the rest of the run.
		input = string(data)
		res.InputBytes = len(input)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.phase(ctx, res, "tokenize", func() (err error) {
		tokens, err = jsonparse.Tokenize(input)
		res.Tokens = len(tokens)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "tokenize %s", cfg.JSONPath)
	}

	err = p.phase(ctx, res, "parse", func() (err error) {
		root, err = jsonparse.ParseWithOptions(tokens, jsonparse.ParseOptions{MaxDepth: cfg.MaxDepth})
		return jsonparse.Locate(err, input)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", cfg.JSONPath)
	}

	err = p.phase(ctx, res, "pairs", func() (err error) {
		pairs, err = haversine.PairsFromValue(root)
		res.Pairs = len(pairs)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "extract pairs from %s", cfg.JSONPath)
	}

	var distances []float64
	err = p.phase(ctx, res, "sum", func() error {
		distances = make([]float64, len(pairs))
		sum := 0.0
		for i, pair := range pairs {
			distances[i] = pair.Distance(cfg.Radius)
			sum += distances[i]
		}
		if len(pairs) > 0 {
			res.Average = sum / float64(len(pairs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	level.Info(p.logger).Log("msg", "processed input", "file", cfg.JSONPath, "bytes", res.InputBytes, "tokens", res.Tokens, "pairs", res.Pairs, "average", res.Average)

	if cfg.DistancesPath != "" {
		err = p.phase(ctx, res, "reference", func() (err error) {
			res.Reference, err = p.reference(cfg, distances)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	for _, name := range cfg.CrossCheck {
		d, _ := crosscheck.Lookup(name)
		var cc CrossCheckResult
		err = p.phase(ctx, res, "crosscheck:"+name, func() error {
			start := p.now()
			got, derr := d.Decode(data)
			if derr == nil {
				derr = crosscheck.Compare(name, pairs, got, cfg.Tolerance)
			}
			cc = CrossCheckResult{Decoder: name, Duration: p.now().Sub(start), Err: derr}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if cc.Err != nil {
			level.Warn(p.logger).Log("msg", "cross-check failed", "decoder", name, "err", cc.Err)
		}
		res.CrossCheck = append(res.CrossCheck, cc)
	}

	return res, nil
}

func (p *Processor) reference(cfg Config, distances []float64) (*Reference, error) {
	f, err := fileio.Open(p.fs, cfg.DistancesPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	want, err := distfile.ReadAll(f, distfile.WithMaxCount(len(distances)))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", cfg.DistancesPath)
	}
	if len(want) != len(distances) {
		return nil, errors.Errorf("%s holds %d distances, input has %d pairs", cfg.DistancesPath, len(want), len(distances))
	}

	ref := &Reference{Count: len(want)}
	sum := 0.0
	for i, w := range want {
		sum += w
		diff := math.Abs(w - distances[i])
		if math.IsNaN(diff) {
			diff = math.Inf(1)
		}
		if diff > ref.MaxError {
			ref.MaxError = diff
		}
		if diff > cfg.Tolerance {
			if ref.Mismatches == 0 {
				level.Warn(p.logger).Log("msg", "distance differs from reference", "pair", i, "want", w, "got", distances[i])
			}
			ref.Mismatches++
		}
	}
	if len(want) > 0 {
		ref.Average = sum / float64(len(want))
	}
	return ref, nil
}
