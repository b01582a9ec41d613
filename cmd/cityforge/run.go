package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cityforge/cityforge/internal/pipeline"
	"github.com/cityforge/cityforge/pkg/citygml"
	"github.com/cityforge/cityforge/pkg/config"
	"github.com/cityforge/cityforge/pkg/generate"
	"github.com/cityforge/cityforge/pkg/lod"
	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/report"
	"github.com/cityforge/cityforge/pkg/solid"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(path)
}

func runGenerate(outPath, cfgPath string, opts generate.Options) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	city, rep, err := generate.New(cfg, opts).Generate()
	if err != nil {
		printReport(rep)
		return err
	}
	if err := params.WriteFile(outPath, city); err != nil {
		return fmt.Errorf("writing parameter file: %w", err)
	}

	rep.AddInfo(report.StageOutput, "parameter file written to %s", outPath)
	printReport(rep)
	return nil
}

type constructOptions struct {
	outDir     string
	workers    int
	points     []string
	solids     bool
	mintIDs    bool
	parts      bool
	rotation   bool
	streets    bool
	vegetation bool
}

func runConstruct(inPath string, opts constructOptions) error {
	city, err := params.ReadFile(inPath)
	if err != nil {
		return err
	}
	if err := city.Validate(); err != nil {
		return fmt.Errorf("parameter file %s: %w", inPath, err)
	}

	points, err := selectPoints(opts.points)
	if err != nil {
		return err
	}
	if !opts.parts {
		for i := range city.Buildings {
			city.Buildings[i].Parts = nil
		}
	}
	if !opts.rotation {
		for i := range city.Buildings {
			city.Buildings[i].Rotation = 0
		}
	}

	sink, err := citygml.OpenSink(opts.outDir, points, citygml.Options{
		Solids:  opts.solids,
		MintIDs: opts.mintIDs,
	})
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep := report.New(len(city.Buildings))
	err = pipeline.Run(ctx, city.Buildings, opts.workers, lod.Build,
		func(b *params.Building, models map[string]*solid.Model, err error) error {
			if err != nil {
				return recordSkip(rep, b, err)
			}
			if err := sink.Write(b, models); err != nil {
				return err
			}
			rep.MarkWritten()
			return nil
		})
	if err != nil {
		printReport(rep)
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}

	if opts.streets && city.Streets != nil {
		if err := citygml.WriteStreets(filepath.Join(opts.outDir, "streets.gml"), city.Streets); err != nil {
			return fmt.Errorf("writing streets: %w", err)
		}
	}
	if opts.vegetation && len(city.Parks) > 0 {
		if err := citygml.WriteParks(filepath.Join(opts.outDir, "vegetation.gml"), city.Parks); err != nil {
			return fmt.Errorf("writing vegetation: %w", err)
		}
	}

	printReport(rep)
	return nil
}

// recordSkip turns a recoverable per-building failure into a report
// entry. Anything else aborts the run.
func recordSkip(rep *report.Report, b *params.Building, err error) error {
	var gerr *solid.GeometryError
	if errors.As(err, &gerr) {
		rep.MarkSkipped(report.StageGeometry, gerr.BuildingID, gerr.Reason)
		return nil
	}
	var cerr *lod.ConsistencyError
	if errors.As(err, &cerr) {
		rep.MarkSkipped(report.StageConsistency, cerr.BuildingID, cerr.Error())
		return nil
	}
	return err
}

func runValidate(inPath string) error {
	city, err := params.ReadFile(inPath)
	if err != nil {
		return err
	}

	rep := report.New(len(city.Buildings))
	for i := range city.Buildings {
		b := &city.Buildings[i]
		if err := b.Validate(); err != nil {
			rep.AddError(report.StageInput, b.ID, "%v", err)
		}
	}
	printReport(rep)

	if len(rep.Errors()) > 0 {
		os.Exit(1)
	}
	return nil
}

func selectPoints(names []string) ([]lod.Point, error) {
	if len(names) == 0 {
		return lod.Points, nil
	}
	points := make([]lod.Point, 0, len(names))
	for _, name := range names {
		pt, ok := lod.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown LOD point %q", name)
		}
		points = append(points, pt)
	}
	return points, nil
}
