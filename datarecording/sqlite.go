package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

type sqliteTable struct {
	entryType reflect.Type
	columns   []string
	entries   []any
}

// SQLiteWriter records data into an SQLite file.
type SQLiteWriter struct {
	*sql.DB

	lock       sync.Mutex
	path       string
	tables     map[string]*sqliteTable
	batchSize  int
	entryCount int
}

// NewSQLiteWriter creates a recorder that writes into path + ".sqlite3".
// An empty path generates a unique file name. The file must not exist.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if path == "" {
		path = "vplat_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	w := NewSQLiteWriterWithDB(db)
	w.path = filename

	return w, nil
}

// NewSQLiteWriterWithDB creates a recorder on top of an open database.
func NewSQLiteWriterWithDB(db *sql.DB) *SQLiteWriter {
	w := &SQLiteWriter{
		DB:        db,
		tables:    make(map[string]*sqliteTable),
		batchSize: 10000,
	}

	atexit.Register(w.Flush)

	return w
}

// New creates an SQLite recorder. It panics if the file cannot be created.
func New(path string) DataRecorder {
	w, err := NewSQLiteWriter(path)
	if err != nil {
		panic(err)
	}

	return w
}

// Path returns the file that the recorder writes to.
func (w *SQLiteWriter) Path() string {
	return w.path
}

// SetBatchSize sets how many entries are buffered before they are flushed.
func (w *SQLiteWriter) SetBatchSize(n int) {
	w.lock.Lock()
	w.batchSize = n
	w.lock.Unlock()
}

// CreateTable creates a table. It panics if the sample is not a flat struct
// or if the table exists.
func (w *SQLiteWriter) CreateTable(tableName string, sampleEntry any) {
	tableNameMustBeValid(tableName)

	t, err := structType(sampleEntry)
	if err != nil {
		panic(err)
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if _, exists := w.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	columns := columnNames(sampleEntry)
	w.mustExecute(`CREATE TABLE ` + tableName +
		` (` + "\n\t" + strings.Join(columns, ",\n\t") + "\n" + `);`)

	w.tables[tableName] = &sqliteTable{
		entryType: t,
		columns:   columns,
	}
}

// InsertData buffers an entry. The buffer is flushed when it is full.
func (w *SQLiteWriter) InsertData(tableName string, entry any) {
	w.lock.Lock()
	defer w.lock.Unlock()

	table, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if t, _ := structType(entry); t != table.entryType {
		panic(fmt.Sprintf("table %s expects %s, got %T",
			tableName, table.entryType, entry))
	}

	table.entries = append(table.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.flush()
	}
}

// ListTables returns the table names in alphabetical order.
func (w *SQLiteWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Flush writes the buffered entries in one transaction.
func (w *SQLiteWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flush()
}

func (w *SQLiteWriter) flush() {
	if w.entryCount == 0 {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		panic(err)
	}

	for name, table := range w.tables {
		if len(table.entries) == 0 {
			continue
		}

		placeholders := strings.TrimSuffix(
			strings.Repeat("?, ", len(table.columns)), ", ")

		stmt, err := tx.Prepare(
			"INSERT INTO " + name + " VALUES (" + placeholders + ")")
		if err != nil {
			panic(err)
		}

		for _, entry := range table.entries {
			if _, err := stmt.Exec(columnValues(entry)...); err != nil {
				panic(err)
			}
		}

		stmt.Close()

		table.entries = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	w.entryCount = 0
}

// Close flushes the buffered entries and closes the database.
func (w *SQLiteWriter) Close() error {
	w.Flush()
	return w.DB.Close()
}

func (w *SQLiteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
