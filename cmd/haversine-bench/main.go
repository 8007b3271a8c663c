// haversine-bench - JSON decoder benchmark runner
//
// Decodes one pairs document repeatedly with jsonparse and every cross-check
// decoder and compares:
//   - Wall time per decode
//   - Throughput in bytes per second
//
// Output: table on stdout, optional CSV and markdown files
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/Neumenon/haversine/internal/crosscheck"
	"github.com/Neumenon/haversine/internal/fileio"
	ulog "github.com/Neumenon/haversine/internal/util/log"
)

type DecoderResult struct {
	Name     string
	Runs     int
	Pairs    int
	Best     time.Duration
	Mean     time.Duration
	PerByte  float64 // bytes per second at the best run
	Relative float64 // Best relative to jsonparse
}

func main() {
	var (
		input    string
		runs     int
		decoders []string
		csvPath  string
		mdPath   string
		logCfg   ulog.Config
	)
	app := kingpin.New(filepath.Base(os.Args[0]), "Benchmark JSON decoders on a haversine pairs document.")
	app.Arg("file", "JSON pairs document. May be gzip or zstd compressed.").Required().StringVar(&input)
	app.Flag("runs", "Decodes per decoder.").Short('n').Default("5").IntVar(&runs)
	app.Flag("decoder", "Decoder to run. Repeatable; defaults to all.").EnumsVar(&decoders, crosscheck.Names()...)
	app.Flag("csv", "Write results as CSV to this path.").StringVar(&csvPath)
	app.Flag("markdown", "Write results as a markdown table to this path.").StringVar(&mdPath)
	logCfg.RegisterFlags(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := ulog.New(os.Stderr, logCfg)
	if err != nil {
		exitWithErr(err)
	}
	if runs < 1 {
		exitWithErr(errors.Errorf("runs must be positive, got %d", runs))
	}
	if len(decoders) == 0 {
		decoders = crosscheck.Names()
	}

	fs := afero.NewOsFs()
	data, err := fileio.ReadFile(fs, input)
	if err != nil {
		exitWithErr(err)
	}

	fmt.Fprintf(os.Stderr, "Haversine Decoder Benchmark\n")
	fmt.Fprintf(os.Stderr, "===========================\n")
	fmt.Fprintf(os.Stderr, "Input: %s (%s), %d runs per decoder\n\n", input, humanize.Bytes(uint64(len(data))), runs)

	var results []DecoderResult
	for _, name := range decoders {
		d, err := crosscheck.Lookup(name)
		if err != nil {
			exitWithErr(err)
		}
		r, err := benchDecoder(d, data, runs)
		if err != nil {
			level.Warn(logger).Log("msg", "skipping decoder", "decoder", name, "err", err)
			continue
		}
		level.Debug(logger).Log("msg", "decoder done", "decoder", name, "best", r.Best, "mean", r.Mean)
		results = append(results, r)
	}
	if len(results) == 0 {
		exitWithErr(errors.New("no decoder succeeded"))
	}

	relativeTo(results, crosscheck.Native)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Best < results[j].Best
	})

	writeTable(os.Stdout, results)

	if csvPath != "" {
		if err := writeFile(fs, csvPath, func(w io.Writer) { writeCSV(w, results) }); err != nil {
			exitWithErr(err)
		}
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}
	if mdPath != "" {
		if err := writeFile(fs, mdPath, func(w io.Writer) { writeMarkdown(w, results, input, len(data), runs) }); err != nil {
			exitWithErr(err)
		}
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}
}

func benchDecoder(d crosscheck.Decoder, data []byte, runs int) (DecoderResult, error) {
	r := DecoderResult{Name: d.Name(), Runs: runs}
	var total time.Duration
	for i := 0; i < runs; i++ {
		start := time.Now()
		pairs, err := d.Decode(data)
		elapsed := time.Since(start)
		if err != nil {
			return r, err
		}
		r.Pairs = len(pairs)
		total += elapsed
		if r.Best == 0 || elapsed < r.Best {
			r.Best = elapsed
		}
	}
	r.Mean = total / time.Duration(runs)
	if r.Best > 0 {
		r.PerByte = float64(len(data)) / r.Best.Seconds()
	}
	return r, nil
}

func relativeTo(results []DecoderResult, base string) {
	var baseline time.Duration
	for _, r := range results {
		if r.Name == base {
			baseline = r.Best
		}
	}
	if baseline == 0 {
		return
	}
	for i := range results {
		results[i].Relative = float64(results[i].Best) / float64(baseline)
	}
}

func writeTable(w io.Writer, results []DecoderResult) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%-12s %12s %12s %14s %8s\n", "decoder", "best", "mean", "throughput", "vs native")
	for _, r := range results {
		line := fmt.Sprintf("%-12s %12v %12v %12s/s %8s\n", r.Name, r.Best, r.Mean, humanize.Bytes(uint64(r.PerByte)), relative(r))
		if r.Name == crosscheck.Native {
			color.New(color.FgCyan).Fprint(w, line)
			continue
		}
		fmt.Fprint(w, line)
	}
}

func relative(r DecoderResult) string {
	if r.Relative == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", r.Relative)
}

func writeCSV(w io.Writer, results []DecoderResult) {
	fmt.Fprintln(w, "decoder,runs,pairs,best_ns,mean_ns,bytes_per_sec,relative")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%d,%d,%.0f,%.4f\n",
			r.Name, r.Runs, r.Pairs, r.Best.Nanoseconds(), r.Mean.Nanoseconds(), r.PerByte, r.Relative)
	}
}

func writeMarkdown(w io.Writer, results []DecoderResult, input string, size, runs int) {
	fmt.Fprintf(w, "# Haversine Decoder Benchmark\n\n")
	fmt.Fprintf(w, "- **Input:** `%s` (%s)\n", input, humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "- **Runs:** %d per decoder, best run reported\n\n", runs)

	fmt.Fprintf(w, "| Decoder | Pairs | Best | Mean | Throughput | vs jsonparse |\n")
	fmt.Fprintf(w, "|---------|-------|------|------|------------|--------------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %v | %v | %s/s | %s |\n",
			r.Name, humanize.Comma(int64(r.Pairs)), r.Best, r.Mean, humanize.Bytes(uint64(r.PerByte)), relative(r))
	}
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func writeFile(fs afero.Fs, path string, fn func(io.Writer)) error {
	f, err := fileio.Create(fs, path, fileio.None)
	if err != nil {
		return err
	}
	ew := &errWriter{w: f}
	fn(ew)
	cerr := f.Close()
	if ew.err != nil {
		return errors.Wrapf(ew.err, "write %s", path)
	}
	return errors.Wrapf(cerr, "close %s", path)
}

func exitWithErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
