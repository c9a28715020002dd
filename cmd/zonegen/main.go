// cmd/zonegen/main.go
// Copyright(c) 2022-2025 elsa contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// zonegen precomputes reachability zones and annotated centerlines for
// all aircraft of a catalog at a set of altitudes and writes them as
// GeoJSON files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/TilBlechschmidt/AviationEmergencyLocations/aviation"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/geojson"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/log"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/util"
	"github.com/TilBlechschmidt/AviationEmergencyLocations/zones"

	"github.com/goforj/godump"
	"golang.org/x/sync/errgroup"
)

var (
	aircraftPath  = flag.String("aircraft", "resources/aircraft.yml", "aircraft catalog")
	locationsPath = flag.String("locations", "resources/locations.yml", "landing location catalog")
	altitudesFlag = flag.String("altitudes", "150,300,600,900", "comma-separated altitudes in meters")
	outDir        = flag.String("out", "zones", "output directory")
	compress      = flag.Bool("compress", false, "zstd-compress the output files")
	workers       = flag.Int("workers", runtime.NumCPU(), "number of concurrent computations")
	dumpLocation  = flag.String("dump", "", "print the envelopes of the location with the given id and exit")
	logLevel      = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir        = flag.String("logdir", "", "log file directory")
)

type options struct {
	Altitudes []float64
	OutDir    string
	Compress  bool
	Workers   int
}

// job is a single output file; lines jobs have no altitude.
type job struct {
	aircraft aviation.Aircraft
	altitude float64
	lines    bool
}

func (j job) filename(compress bool) string {
	var fn string
	if j.lines {
		fn = j.aircraft.ID + "-lines.geojson"
	} else {
		fn = j.aircraft.ID + "-" + strconv.FormatFloat(j.altitude, 'f', -1, 64) + "m.geojson"
	}
	return util.Select(compress, fn+".zst", fn)
}

func main() {
	flag.Parse()

	lg := log.New(false, *logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	altitudes, err := util.ParseFloatList(*altitudesFlag)
	if err != nil {
		fatal(lg, "-altitudes: %v", err)
	}

	catalog, err := aviation.LoadCatalogFiles(*aircraftPath, *locationsPath, lg)
	if err != nil {
		fatal(lg, "%v", err)
	}
	engine, err := zones.NewEngine(nil, zones.DefaultConfig(), lg)
	if err != nil {
		fatal(lg, "%v", err)
	}

	if *dumpLocation != "" {
		if err := dumpEnvelopes(os.Stdout, catalog, engine, *dumpLocation, altitudes); err != nil {
			fatal(lg, "%v", err)
		}
		return
	}

	start := time.Now()
	files, err := generate(context.Background(), options{
		Altitudes: altitudes,
		OutDir:    *outDir,
		Compress:  *compress,
		Workers:   *workers,
	}, catalog, engine, lg)
	if err != nil {
		fatal(lg, "%v", err)
	}

	fmt.Printf("Wrote %d files to %s in %s\n", len(files), *outDir, time.Since(start).Round(time.Millisecond))
}

func fatal(lg *log.Logger, msg string, args ...any) {
	lg.Errorf(msg, args...)
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

// generate writes the zones of every aircraft at every altitude and the
// annotated centerlines of every aircraft to opts.OutDir. It returns the
// paths of the files written; it stops at the first failure.
func generate(ctx context.Context, opts options, catalog *aviation.Catalog, engine *zones.Engine,
	lg *log.Logger) ([]string, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, err
	}

	jobs := make(chan job)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(jobs)

		for _, ac := range catalog.Aircraft() {
			for _, j := range append([]job{{aircraft: ac, lines: true}},
				util.MapSlice(opts.Altitudes, func(alt float64) job { return job{aircraft: ac, altitude: alt} })...) {
				select {
				case jobs <- j:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		return nil
	})

	results := make([][]string, max(1, opts.Workers))
	for i := range results {
		eg.Go(func() error {
			for j := range jobs {
				path := filepath.Join(opts.OutDir, j.filename(opts.Compress))
				if err := runJob(j, path, catalog, engine); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				lg.Debugf("%s: written", path)
				results[i] = append(results[i], path)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var files []string
	for _, r := range results {
		files = append(files, r...)
	}
	lg.Infof("wrote %d files to %s", len(files), opts.OutDir)
	return files, nil
}

func runJob(j job, path string, catalog *aviation.Catalog, engine *zones.Engine) error {
	var fc geojson.FeatureCollection
	if j.lines {
		lines, err := engine.AnnotateCenterlines(catalog.Locations(), j.aircraft)
		if err != nil {
			return err
		}
		fc = geojson.FromLines(lines)
	} else {
		zm, err := engine.CompositeZones(catalog.Locations(), j.aircraft, j.altitude)
		if err != nil {
			return err
		}
		fc = geojson.FromZones(zm, engine.Config)
	}

	b, err := fc.Marshal()
	if err != nil {
		return err
	}
	return util.WriteResource(path, b)
}

// dumpEnvelopes prints the envelope of a single location for each
// aircraft and altitude.
func dumpEnvelopes(w io.Writer, catalog *aviation.Catalog, engine *zones.Engine, id string, altitudes []float64) error {
	loc, err := catalog.LookupLocation(id)
	if err != nil {
		return err
	}

	godump.Fdump(w, loc)
	for _, ac := range catalog.Aircraft() {
		for _, alt := range altitudes {
			env, err := engine.BuildEnvelope(loc, ac, alt)
			if err != nil {
				fmt.Fprintf(w, "%s at %gm: %v\n", ac.ID, alt, err)
				continue
			}
			fmt.Fprintf(w, "%s at %gm: %s, area %g deg^2\n", ac.ID, alt, env.Category, env.Ring.Area())
			godump.Fdump(w, env)
		}
	}
	return nil
}
