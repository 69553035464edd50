package perifusion

// TraitTable is the extraction output: one row per donor, one column per
// computed trait. Donor order follows the input table's column order and
// column order follows the parameter table's row order, so repeated runs over
// the same inputs serialize identically.
type TraitTable struct {
	Donors  []string
	Columns []string
	cells   map[string]map[string]Value

	// AliasColumn names the optional external-identifier column emitted by
	// the writer when Aliases is non-nil.
	AliasColumn string
	// Aliases maps donor IDs to an external study identifier.
	Aliases map[string]string
}

// NewTraitTable creates an empty trait table for the given donors.
func NewTraitTable(donors []string) *TraitTable {
	cells := make(map[string]map[string]Value, len(donors))
	for _, d := range donors {
		cells[d] = make(map[string]Value)
	}
	return &TraitTable{Donors: append([]string(nil), donors...), cells: cells}
}

// AddColumn appends a trait column and fills it from the donor-keyed values.
// Donors absent from the map get the missing marker.
func (t *TraitTable) AddColumn(name string, byDonor map[string]Value) {
	t.Columns = append(t.Columns, name)
	for _, d := range t.Donors {
		t.cells[d][name] = byDonor[d]
	}
}

// Get returns the cell for one donor and trait column; absent cells read as
// missing.
func (t *TraitTable) Get(donor, column string) Value {
	row, ok := t.cells[donor]
	if !ok {
		return Missing
	}
	return row[column]
}

// Row returns the donor's cells in column order.
func (t *TraitTable) Row(donor string) []Value {
	out := make([]Value, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = t.Get(donor, col)
	}
	return out
}

// Merge appends the other table's columns, matching rows on donor ID. Donors
// present only in the other table gain a row with missing cells for the
// existing columns; donors absent from it read as missing in its columns.
func (t *TraitTable) Merge(other *TraitTable) {
	for _, d := range other.Donors {
		if _, ok := t.cells[d]; !ok {
			t.Donors = append(t.Donors, d)
			t.cells[d] = make(map[string]Value)
		}
	}
	for _, col := range other.Columns {
		t.Columns = append(t.Columns, col)
		for _, d := range t.Donors {
			t.cells[d][col] = other.Get(d, col)
		}
	}
}

// Relabel attaches an external identifier for each donor that has one in the
// mapping. Unmapped donors keep no alias and serialize with the missing
// marker in the alias column.
func (t *TraitTable) Relabel(column string, mapping map[string]string) {
	t.AliasColumn = column
	t.Aliases = make(map[string]string, len(t.Donors))
	for _, d := range t.Donors {
		if alias, ok := mapping[d]; ok {
			t.Aliases[d] = alias
		}
	}
}
