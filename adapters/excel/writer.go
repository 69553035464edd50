package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"perifuse/domain/perifusion"
)

// WriteTraitTable serializes a trait table as CSV: a Donor ID column, the
// optional alias column, then one column per trait in parameter order.
// Missing cells serialize as empty fields.
func WriteTraitTable(w io.Writer, table *perifusion.TraitTable) error {
	cw := csv.NewWriter(w)

	header := []string{"Donor ID"}
	if table.Aliases != nil {
		header = append(header, table.AliasColumn)
	}
	header = append(header, table.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, donor := range table.Donors {
		record := []string{donor}
		if table.Aliases != nil {
			record = append(record, table.Aliases[donor])
		}
		for _, v := range table.Row(donor) {
			record = append(record, v.String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row for donor %s: %w", donor, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTraitFile writes the trait table to a CSV file.
func WriteTraitFile(path string, table *perifusion.TraitTable) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()
	return WriteTraitTable(file, table)
}
