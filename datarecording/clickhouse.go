package datarecording

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseOptions configures the connection of a ClickHouseWriter.
type ClickHouseOptions struct {
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
	BatchSize int
}

type clickHouseTable struct {
	entryType reflect.Type
	entries   []any
}

// ClickHouseWriter records data into a ClickHouse database using the native
// protocol and batched inserts.
type ClickHouseWriter struct {
	conn clickhouse.Conn

	lock       sync.Mutex
	tables     map[string]*clickHouseTable
	batchSize  int
	entryCount int
}

// NewClickHouseWriter connects to a ClickHouse server.
func NewClickHouseWriter(opts ClickHouseOptions) (*ClickHouseWriter, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", opts.Host, opts.Port)},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      30 * time.Second,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("pinging ClickHouse: %w", err)
	}

	return &ClickHouseWriter{
		conn:      conn,
		tables:    make(map[string]*clickHouseTable),
		batchSize: opts.BatchSize,
	}, nil
}

// CreateTable creates a MergeTree table if it does not exist.
func (w *ClickHouseWriter) CreateTable(tableName string, sampleEntry any) {
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

	query, err := clickHouseCreateTable(tableName, sampleEntry)
	if err != nil {
		panic(err)
	}

	if err := w.conn.Exec(context.Background(), query); err != nil {
		panic(fmt.Errorf("creating table %s: %w", tableName, err))
	}

	w.tables[tableName] = &clickHouseTable{entryType: t}
}

// InsertData buffers an entry. The buffers are sent when they are full.
func (w *ClickHouseWriter) InsertData(tableName string, entry any) {
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
func (w *ClickHouseWriter) ListTables() []string {
	w.lock.Lock()
	defer w.lock.Unlock()

	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Flush sends one batch per table.
func (w *ClickHouseWriter) Flush() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.flush()
}

func (w *ClickHouseWriter) flush() {
	ctx := context.Background()

	for name, table := range w.tables {
		if len(table.entries) == 0 {
			continue
		}

		batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+name)
		if err != nil {
			panic(fmt.Errorf("preparing batch for %s: %w", name, err))
		}

		for _, entry := range table.entries {
			if err := batch.Append(columnValues(entry)...); err != nil {
				panic(fmt.Errorf("appending to %s: %w", name, err))
			}
		}

		if err := batch.Send(); err != nil {
			panic(fmt.Errorf("sending batch to %s: %w", name, err))
		}

		table.entries = nil
	}

	w.entryCount = 0
}

// Close flushes and closes the connection.
func (w *ClickHouseWriter) Close() error {
	w.Flush()
	return w.conn.Close()
}

// clickHouseCreateTable generates the statement that creates a table for
// entries shaped like sampleEntry.
func clickHouseCreateTable(tableName string, sampleEntry any) (string, error) {
	t, err := structType(sampleEntry)
	if err != nil {
		return "", err
	}

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		columns = append(columns,
			fmt.Sprintf("%s %s", f.Name, clickHouseType(f.Type.Kind())))
	}

	if len(columns) == 0 {
		return "", fmt.Errorf("entry of type %s has no exported fields", t)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree() ORDER BY tuple()",
		tableName, strings.Join(columns, ",\n\t")), nil
}

func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	default:
		return "String"
	}
}
