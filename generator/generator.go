// Package generator produces random haversine input files: a JSON document
// of coordinate pairs and a parallel distance file of reference answers.
package generator

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/Neumenon/haversine/distfile"
	"github.com/Neumenon/haversine/haversine"
	"github.com/Neumenon/haversine/internal/fileio"
)

// MaxCount bounds the number of pairs in one run.
const MaxCount = 1 << 34

// Config configures a generator run.
type Config struct {
	Count       uint64
	Seed        uint64
	OutDir      string
	Compression string
	Radius      float64
}

// RegisterFlags registers the generator flags on app.
func (c *Config) RegisterFlags(app *kingpin.Application) {
	app.Arg("count", "Number of coordinate pairs to generate.").Required().Uint64Var(&c.Count)
	app.Flag("seed", "Random seed. Equal seeds produce identical files.").Default("1").Envar("HAVERSINE_SEED").Uint64Var(&c.Seed)
	app.Flag("out-dir", "Directory the JSON and distance files are written to.").Default(".").StringVar(&c.OutDir)
	app.Flag("compress", "Compression for the JSON file.").Default(string(fileio.None)).EnumVar(&c.Compression, fileio.Compressions...)
	app.Flag("radius", "Sphere radius used for reference distances.").Default(strconv.FormatFloat(haversine.EarthRadius, 'f', -1, 64)).Float64Var(&c.Radius)
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Count == 0 {
		return errors.New("count must be positive")
	}
	if c.Count > MaxCount {
		return errors.Errorf("count %d exceeds the maximum of %d", c.Count, uint64(MaxCount))
	}
	if c.Radius <= 0 {
		return errors.Errorf("radius must be positive, got %v", c.Radius)
	}
	if _, err := fileio.ParseCompression(c.Compression); err != nil {
		return err
	}
	return nil
}

// Summary describes a generated data set.
type Summary struct {
	Count        uint64
	Average      float64
	JSONPath     string
	DistancePath string
}

// Generate writes cfg.Count random pairs as JSON to jsonW and their reference
// distances to distW, and returns the count and average distance. distW is
// flushed before returning.
func Generate(cfg Config, jsonW io.Writer, distW *distfile.Writer) (*Summary, error) {
	if cfg.Radius == 0 {
		cfg.Radius = haversine.EarthRadius
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	w := bufio.NewWriter(jsonW)

	if _, err := w.WriteString("{\"pairs\": [\n"); err != nil {
		return nil, errors.Wrap(err, "write json")
	}

	var (
		sum float64
		buf []byte
	)
	for i := uint64(0); i < cfg.Count; i++ {
		p := haversine.Pair{
			X0: uniform(rng, -180, 180),
			Y0: uniform(rng, -90, 90),
			X1: uniform(rng, -180, 180),
			Y1: uniform(rng, -90, 90),
		}
		d := p.Distance(cfg.Radius)
		sum += d

		buf = appendPair(buf[:0], p)
		if i < cfg.Count-1 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return nil, errors.Wrap(err, "write json")
		}
		if err := distW.WriteDistance(d); err != nil {
			return nil, errors.Wrap(err, "write distances")
		}
	}

	if _, err := w.WriteString("]}\n"); err != nil {
		return nil, errors.Wrap(err, "write json")
	}
	if err := w.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush json")
	}
	if err := distW.Flush(); err != nil {
		return nil, errors.Wrap(err, "flush distances")
	}

	summary := &Summary{Count: cfg.Count}
	if cfg.Count > 0 {
		summary.Average = sum / float64(cfg.Count)
	}
	return summary, nil
}

// uniform returns a value in [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func appendPair(buf []byte, p haversine.Pair) []byte {
	buf = append(buf, `    {"x0": `...)
	buf = strconv.AppendFloat(buf, p.X0, 'f', -1, 64)
	buf = append(buf, `, "y0": `...)
	buf = strconv.AppendFloat(buf, p.Y0, 'f', -1, 64)
	buf = append(buf, `, "x1": `...)
	buf = strconv.AppendFloat(buf, p.X1, 'f', -1, 64)
	buf = append(buf, `, "y1": `...)
	buf = strconv.AppendFloat(buf, p.Y1, 'f', -1, 64)
	return append(buf, '}')
}

// FileNames returns the JSON and distance file names for cfg inside
// cfg.OutDir: haversine_<count>.json[.gz|.zst] and haversine_<count>.f64.
func FileNames(cfg Config) (string, string) {
	c, _ := fileio.ParseCompression(cfg.Compression)
	base := filepath.Join(cfg.OutDir, fmt.Sprintf("haversine_%d", cfg.Count))
	return base + ".json" + c.Ext(), base + ".f64"
}

// GenerateFiles runs Generate into files on fs named by FileNames.
func GenerateFiles(fs afero.Fs, cfg Config) (summary *Summary, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	compression, _ := fileio.ParseCompression(cfg.Compression)
	jsonPath, distPath := FileNames(cfg)

	if err := fs.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", cfg.OutDir)
	}

	jsonFile, err := fileio.Create(fs, jsonPath, compression)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := jsonFile.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", jsonPath)
		}
	}()

	distFile, err := fileio.Create(fs, distPath, fileio.None)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := distFile.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", distPath)
		}
	}()

	summary, err = Generate(cfg, jsonFile, distfile.NewWriter(distFile))
	if err != nil {
		return nil, err
	}
	summary.JSONPath = jsonPath
	summary.DistancePath = distPath
	return summary, nil
}
