package traits

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"perifuse/domain/core"
	"perifuse/domain/perifusion"
	"perifuse/internal"
)

// Column is one named column of a loaded input table, time column included.
type Column struct {
	Name   string
	Values []perifusion.Value
}

// Extractor runs the full trait pipeline over one input table and parameter
// table. Per-cell computation gaps (missing data, no qualifying peak, zero
// baseline) become missing output cells; only schema-level defects abort.
type Extractor struct {
	log *internal.Logger
}

// NewExtractor creates an extractor logging through the given logger.
func NewExtractor(log *internal.Logger) *Extractor {
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	return &Extractor{log: log}
}

// TraitsForAll computes every trait column for every donor.
//
// Exactly one input column name must contain "time" (case-insensitive); it
// supplies the shared axis and every other column is one donor. Output rows
// follow donor column order and output columns follow parameter row order,
// so the result is deterministic regardless of evaluation order. Donors are
// processed in parallel; phase definitions are read-only throughout.
func (e *Extractor) TraitsForAll(ctx context.Context, columns []Column, phases []perifusion.PhaseDefinition, prefix string) (*perifusion.TraitTable, error) {
	input, err := buildInputTable(columns)
	if err != nil {
		return nil, err
	}

	table := perifusion.NewTraitTable(input.Donors)
	for _, def := range phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.extractPhase(ctx, input, def, prefix, table); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// buildInputTable locates the time axis and assembles donor series.
func buildInputTable(columns []Column) (*perifusion.InputTable, error) {
	timeIdx := -1
	for i, col := range columns {
		if !strings.Contains(strings.ToLower(col.Name), "time") {
			continue
		}
		if timeIdx >= 0 {
			return nil, fmt.Errorf("%w: %q and %q", core.ErrAmbiguousTime, columns[timeIdx].Name, col.Name)
		}
		timeIdx = i
	}
	if timeIdx < 0 {
		return nil, core.ErrNoTimeColumn
	}

	times := make([]float64, len(columns[timeIdx].Values))
	for i, v := range columns[timeIdx].Values {
		f, ok := v.Float()
		if !ok {
			return nil, core.NewSchemaError("input", "time column holds a non-numeric value at row "+strconv.Itoa(i))
		}
		times[i] = f
	}

	donors := make([]string, 0, len(columns)-1)
	values := make(map[string][]perifusion.Value, len(columns)-1)
	for i, col := range columns {
		if i == timeIdx {
			continue
		}
		donors = append(donors, col.Name)
		values[col.Name] = col.Values
	}
	return perifusion.NewInputTable(times, donors, values)
}

// peakTraits holds the per-donor outputs of one peak phase.
type peakTraits struct {
	auc   perifusion.Value
	index perifusion.Value
}

func (e *Extractor) extractPhase(ctx context.Context, input *perifusion.InputTable, def perifusion.PhaseDefinition, prefix string, table *perifusion.TraitTable) error {
	switch def.Kind {
	case perifusion.KindBaseline:
		results := make([]perifusion.Value, len(input.Donors))
		e.forEachDonor(ctx, input, func(i int, donor string, series perifusion.TimeSeries) {
			results[i] = e.baselineCell(donor, def, series)
		})
		cells := make(map[string]perifusion.Value, len(input.Donors))
		for i, donor := range input.Donors {
			cells[donor] = results[i]
		}
		table.AddColumn(traitName(prefix, def.Name), cells)
		return nil

	case perifusion.KindPeak:
		results := make([]peakTraits, len(input.Donors))
		e.forEachDonor(ctx, input, func(i int, donor string, series perifusion.TimeSeries) {
			results[i] = e.peakCells(donor, def, series)
		})

		aucs := make(map[string]perifusion.Value, len(results))
		indices := make(map[string]perifusion.Value, len(results))
		for i, donor := range input.Donors {
			aucs[donor] = results[i].auc
			indices[donor] = results[i].index
		}
		table.AddColumn(traitName(prefix, def.Name)+" AUC", aucs)
		if def.ComputeIndex {
			suffix := " SI"
			if def.Negative {
				suffix = " II"
			}
			table.AddColumn(traitName(prefix, def.Name)+suffix, indices)
		}
		return nil

	default:
		return core.NewSchemaError("parameter", fmt.Sprintf("phase %q has unknown kind %v", def.Name, def.Kind))
	}
}

// forEachDonor fans the per-donor computation out over a bounded worker pool.
// Each worker writes only its own slot of an index-aligned result slice, so
// assembly stays order-stable without locking.
func (e *Extractor) forEachDonor(ctx context.Context, input *perifusion.InputTable, fn func(i int, donor string, series perifusion.TimeSeries)) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, donor := range input.Donors {
		series, ok := input.Series(donor)
		if !ok {
			continue
		}
		i, donor := i, donor
		g.Go(func() error {
			fn(i, donor, series)
			return nil
		})
	}
	_ = g.Wait()
}

func (e *Extractor) baselineCell(donor string, def perifusion.PhaseDefinition, series perifusion.TimeSeries) perifusion.Value {
	baseline, err := Baseline(series, def.BaselineTime)
	if err != nil {
		e.log.Warn("phase %q donor %q: %v", def.Name, donor, err)
		return perifusion.Missing
	}
	return baseline
}

func (e *Extractor) peakCells(donor string, def perifusion.PhaseDefinition, series perifusion.TimeSeries) peakTraits {
	missing := peakTraits{auc: perifusion.Missing, index: perifusion.Missing}

	baseline, err := Baseline(series, def.BaselineTime)
	if err != nil {
		e.log.Warn("phase %q donor %q: %v", def.Name, donor, err)
		return missing
	}
	base, ok := baseline.Float()
	if !ok {
		return missing
	}

	lo, hi, err := def.PeakRange.Bounds(series.Times)
	if err != nil {
		e.log.Warn("phase %q donor %q: %v", def.Name, donor, err)
		return missing
	}
	window := series.Window(lo, hi)

	region, found := DetectPeak(window, base, def)
	if !found {
		return missing
	}

	out := peakTraits{
		auc:   AUC(window, region, base, def.Negative),
		index: perifusion.Missing,
	}
	if def.ComputeIndex {
		out.index = Index(baseline, perifusion.Some(region.Extremum), def.Negative)
	}
	return out
}

func traitName(prefix, phase string) string {
	return strings.TrimSpace(prefix + " " + phase)
}
