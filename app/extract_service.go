package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"perifuse/adapters/excel"
	"perifuse/adapters/postgres"
	"perifuse/domain/core"
	"perifuse/domain/perifusion"
	"perifuse/internal"
	"perifuse/internal/errors"
	"perifuse/internal/traits"
)

// ExtractService runs the whole pipeline: load input and parameter tables,
// extract traits per donor, merge per-unit results, and hand the table to
// its sinks.
type ExtractService struct {
	extractor *traits.Extractor
	repo      *postgres.TraitRepository // optional
	log       *internal.Logger
}

// ExtractRequest defines one extraction run over files.
type ExtractRequest struct {
	Input         excel.ReaderConfig
	ParameterFile string
	Prefix        string

	// AliasColumn/Aliases optionally relabel donors with external study IDs.
	AliasColumn string
	Aliases     map[string]string
}

// ExtractResult is the outcome of one run.
type ExtractResult struct {
	RunID     core.RunID             `json:"run_id"`
	Table     *perifusion.TraitTable `json:"-"`
	Columns   []string               `json:"columns"`
	Donors    int                    `json:"donors"`
	RuntimeMs int64                  `json:"runtime_ms"`
}

// NewExtractService creates an extraction service. The repository may be nil
// when no trait store is configured.
func NewExtractService(repo *postgres.TraitRepository, log *internal.Logger) *ExtractService {
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	return &ExtractService{
		extractor: traits.NewExtractor(log),
		repo:      repo,
		log:       log,
	}
}

// Run executes a file-driven extraction.
func (s *ExtractService) Run(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	start := time.Now()
	runID := core.RunID(core.NewID())

	defs, err := excel.LoadPhaseDefinitions(req.ParameterFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading parameter table")
	}
	s.log.Info("run %s: %d phases from %s", runID, len(defs), req.ParameterFile)

	reader := excel.NewDataReader(req.Input)
	var table *perifusion.TraitTable
	if req.Input.UnitRow {
		table, err = s.extractUnits(ctx, reader, defs, req.Prefix)
	} else {
		var columns []traits.Column
		columns, err = reader.ReadColumns()
		if err == nil {
			table, err = s.extractor.TraitsForAll(ctx, columns, defs, req.Prefix)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "extracting traits")
	}

	if req.Aliases != nil {
		table.Relabel(req.AliasColumn, req.Aliases)
	}

	if s.repo != nil {
		if err := s.repo.StoreTable(ctx, runID, table); err != nil {
			return nil, errors.Wrap(err, "storing trait table")
		}
	}

	result := &ExtractResult{
		RunID:     runID,
		Table:     table,
		Columns:   table.Columns,
		Donors:    len(table.Donors),
		RuntimeMs: time.Since(start).Milliseconds(),
	}
	s.log.Info("run %s: %d donors, %d trait columns in %dms",
		runID, result.Donors, len(result.Columns), result.RuntimeMs)
	return result, nil
}

// ExtractColumns runs extraction over already-loaded columns, for callers
// that do their own I/O (the HTTP surface, tests).
func (s *ExtractService) ExtractColumns(ctx context.Context, columns []traits.Column, defs []perifusion.PhaseDefinition, prefix string) (*perifusion.TraitTable, error) {
	return s.extractor.TraitsForAll(ctx, columns, defs, prefix)
}

// extractUnits runs one extraction per unit table of a report workbook and
// merges the results on donor ID. Unit labels become part of the trait
// prefix so the merged columns stay distinguishable.
func (s *ExtractService) extractUnits(ctx context.Context, reader *excel.DataReader, defs []perifusion.PhaseDefinition, prefix string) (*perifusion.TraitTable, error) {
	unitTables, err := reader.ReadUnitTables()
	if err != nil {
		return nil, err
	}

	// Deterministic unit order: sorted labels.
	units := make([]string, 0, len(unitTables))
	for unit := range unitTables {
		units = append(units, unit)
	}
	sort.Strings(units)

	var merged *perifusion.TraitTable
	for _, unit := range units {
		unitPrefix := strings.TrimSpace(prefix + " " + unit)
		t, err := s.extractor.TraitsForAll(ctx, unitTables[unit], defs, unitPrefix)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = t
		} else {
			merged.Merge(t)
		}
	}
	return merged, nil
}
