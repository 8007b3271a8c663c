// haversine-generator writes a random haversine pairs document and the
// matching reference distance file.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"

	"github.com/Neumenon/haversine/generator"
	ulog "github.com/Neumenon/haversine/internal/util/log"
)

func main() {
	var (
		cfg    generator.Config
		logCfg ulog.Config
	)
	app := kingpin.New(filepath.Base(os.Args[0]), "Generate random coordinate pairs and their haversine distances.")
	cfg.RegisterFlags(app)
	logCfg.RegisterFlags(app)
	app.HelpFlag.Short('h')
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := ulog.New(os.Stderr, logCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fs := afero.NewOsFs()
	summary, err := generator.GenerateFiles(fs, cfg)
	if err != nil {
		level.Error(logger).Log("msg", "generation failed", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "generated", "pairs", summary.Count, "seed", cfg.Seed, "json", summary.JSONPath, "distances", summary.DistancePath)

	fmt.Printf("Method: uniform\n")
	fmt.Printf("Random seed: %d\n", cfg.Seed)
	fmt.Printf("Pair count: %s\n", humanize.Comma(int64(summary.Count)))
	fmt.Printf("Expected average: %.16f\n", summary.Average)
	for _, path := range []string{summary.JSONPath, summary.DistancePath} {
		if fi, err := fs.Stat(path); err == nil {
			fmt.Printf("Wrote %s (%s)\n", path, humanize.Bytes(uint64(fi.Size())))
		}
	}
}
