// haversine-processor parses a JSON document of coordinate pairs, prints the
// average haversine distance and checks it against a reference distance file.
//
// Exit codes: 0 on success, 1 when processing fails, 2 on bad flags and 3 when
// a reference or cross-check comparison disagrees.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	ulog "github.com/Neumenon/haversine/internal/util/log"
	"github.com/Neumenon/haversine/jsonparse"
	"github.com/Neumenon/haversine/processor"
)

const (
	exitFailure  = 1
	exitUsage    = 2
	exitMismatch = 3
)

func main() {
	var (
		cfg    processor.Config
		logCfg ulog.Config
	)
	app := kingpin.New(filepath.Base(os.Args[0]), "Average haversine distances of a JSON pairs document.")
	cfg.RegisterFlags(app)
	logCfg.RegisterFlags(app)
	app.HelpFlag.Short('h')

	if _, err := app.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.Name, err)
		app.Usage(os.Args[1:])
		os.Exit(exitUsage)
	}

	logger, err := ulog.New(os.Stderr, logCfg)
	if err != nil {
		exitWithErr(err, exitUsage)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := processor.New(afero.NewOsFs(), logger).Run(ctx, cfg)
	if err != nil {
		level.Error(logger).Log("msg", "processing failed", "err", err)
		if se := syntaxError(err); se != nil {
			exitWithErr(fmt.Errorf("%s: %s at line %d, column %d", cfg.JSONPath, se.Kind, se.Line, se.Column), exitFailure)
		}
		exitWithErr(err, exitFailure)
	}

	printResult(cfg, res)
	if !res.OK() {
		os.Exit(exitMismatch)
	}
}

func syntaxError(err error) *jsonparse.SyntaxError {
	var se *jsonparse.SyntaxError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

func printResult(cfg processor.Config, res *processor.Result) {
	bold := color.New(color.Bold)
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	bold.Println("Input:")
	fmt.Printf("\tfile: %s\n", cfg.JSONPath)
	fmt.Printf("\tsize: %v", humanize.Bytes(uint64(res.InputBytes)))
	if res.CompressedBytes != int64(res.InputBytes) {
		fmt.Printf(" (%v on disk)", humanize.Bytes(uint64(res.CompressedBytes)))
	}
	fmt.Println()
	fmt.Printf("\ttokens: %s, pairs: %s\n", humanize.Comma(int64(res.Tokens)), humanize.Comma(int64(res.Pairs)))
	fmt.Printf("\thaversine average: %.16f\n", res.Average)

	if ref := res.Reference; ref != nil {
		bold.Println("Reference:")
		fmt.Printf("\tfile: %s, values: %s\n", cfg.DistancesPath, humanize.Comma(int64(ref.Count)))
		fmt.Printf("\treference average: %.16f\n", ref.Average)
		fmt.Printf("\tdifference: %.16f, max error: %g\n", res.Average-ref.Average, ref.MaxError)
		if ref.OK() {
			good.Println("\tall distances within tolerance")
		} else {
			bad.Printf("\t%d distances outside tolerance %g\n", ref.Mismatches, cfg.Tolerance)
		}
	}

	if len(res.CrossCheck) > 0 {
		bold.Println("Cross-check:")
		for _, c := range res.CrossCheck {
			if c.Err != nil {
				bad.Printf("\t%-12s FAIL %v\n", c.Decoder, c.Err)
				continue
			}
			good.Printf("\t%-12s ok   %v\n", c.Decoder, c.Duration)
		}
	}

	bold.Println("Timings:")
	total := res.Total()
	for _, t := range res.Timings {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(t.Duration) / float64(total)
		}
		fmt.Printf("\t%-20s %12v %6.2f%%", t.Phase, t.Duration, pct)
		if t.Phase == "parse" && t.Duration > 0 {
			fmt.Printf("  %s/s", humanize.Bytes(uint64(float64(res.InputBytes)/t.Duration.Seconds())))
		}
		fmt.Println()
	}
	fmt.Printf("\t%-20s %12v\n", "total", total)
}

func exitWithErr(err error, code int) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
