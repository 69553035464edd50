package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"perifuse/domain/core"
	"perifuse/domain/perifusion"
)

// TraitRepository persists extracted trait tables. The engine itself never
// touches storage; this is the external collaborator that keeps run outputs
// queryable after the fact.
type TraitRepository struct {
	db *sqlx.DB
}

// NewTraitRepository creates a trait repository over an open connection.
func NewTraitRepository(db *sqlx.DB) *TraitRepository {
	return &TraitRepository{db: db}
}

// Migrate creates the trait_values table if it does not exist.
func (r *TraitRepository) Migrate(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS trait_values (
		run_id     TEXT             NOT NULL,
		donor_id   TEXT             NOT NULL,
		donor_pos  INTEGER          NOT NULL,
		trait      TEXT             NOT NULL,
		trait_pos  INTEGER          NOT NULL,
		value      DOUBLE PRECISION,
		created_at TIMESTAMPTZ      NOT NULL,
		PRIMARY KEY (run_id, donor_id, trait)
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create trait_values table: %w", err)
	}
	return nil
}

// StoreTable writes every cell of a trait table under one run ID. Missing
// cells are stored as SQL NULLs, preserving the tri-state semantics.
func (r *TraitRepository) StoreTable(ctx context.Context, runID core.RunID, table *perifusion.TraitTable) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO trait_values (run_id, donor_id, donor_pos, trait, trait_pos, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	now := time.Now().UTC()

	for di, donor := range table.Donors {
		for ti, trait := range table.Columns {
			var value interface{}
			if f, ok := table.Get(donor, trait).Float(); ok {
				value = f
			}
			if _, err := tx.ExecContext(ctx, query, runID.String(), donor, di, trait, ti, value, now); err != nil {
				return fmt.Errorf("failed to store trait %s for donor %s: %w", trait, donor, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trait table: %w", err)
	}
	return nil
}

// LoadTable reloads a stored run into a trait table. Column and donor order
// follow insertion order of the original run.
func (r *TraitRepository) LoadTable(ctx context.Context, runID core.RunID) (*perifusion.TraitTable, error) {
	query := `SELECT donor_id, trait, value FROM trait_values
		WHERE run_id = $1 ORDER BY donor_pos, trait_pos`

	rows, err := r.db.QueryxContext(ctx, query, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	defer rows.Close()

	var donors []string
	seenDonor := make(map[string]bool)
	var columns []string
	seenCol := make(map[string]bool)
	type cell struct {
		donor, trait string
		value        perifusion.Value
	}
	var cells []cell

	for rows.Next() {
		var donor, trait string
		var value *float64
		if err := rows.Scan(&donor, &trait, &value); err != nil {
			return nil, fmt.Errorf("failed to scan trait row: %w", err)
		}
		if !seenDonor[donor] {
			seenDonor[donor] = true
			donors = append(donors, donor)
		}
		if !seenCol[trait] {
			seenCol[trait] = true
			columns = append(columns, trait)
		}
		v := perifusion.Missing
		if value != nil {
			v = perifusion.Some(*value)
		}
		cells = append(cells, cell{donor: donor, trait: trait, value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trait rows: %w", err)
	}

	table := perifusion.NewTraitTable(donors)
	for _, col := range columns {
		byDonor := make(map[string]perifusion.Value)
		for _, c := range cells {
			if c.trait == col {
				byDonor[c.donor] = c.value
			}
		}
		table.AddColumn(col, byDonor)
	}
	return table, nil
}
