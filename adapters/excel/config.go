package excel

// ReaderConfig controls how a secretion report file is read.
type ReaderConfig struct {
	FilePath string
	// Sheet is the worksheet to read from .xlsx files. Defaults to Sheet1.
	Sheet string
	// SkipRows is the number of preamble rows above the header block.
	SkipRows int
	// UnitRow indicates a second header row carrying unit labels under the
	// donor names, as in perifusion report workbooks. When set, ReadUnitTables
	// splits the sheet into one table per unit label.
	UnitRow bool
}

func (c ReaderConfig) sheet() string {
	if c.Sheet == "" {
		return "Sheet1"
	}
	return c.Sheet
}
