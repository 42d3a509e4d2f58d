// Package datarecording stores simulation records, such as traced
// transactions, in a database.
package datarecording

// DataRecorder is a backend that can record and store data. Entries are
// flat structs whose exported fields are of basic kinds; every entry of a
// table has the type of the sample the table was created with.
type DataRecorder interface {
	// CreateTable creates a new table whose columns are the fields of
	// sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all the tables.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and releases the database.
	Close() error
}
