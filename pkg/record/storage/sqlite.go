package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go SQLite driver, registered as "sqlite"

	"mercator-hq/fileformat/pkg/record"
)

// Supported database/sql driver names.
const (
	DriverMattn   = "sqlite3"
	DriverModernc = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite record backend.
type SQLiteConfig struct {
	// Driver is DriverMattn (cgo) or DriverModernc (pure Go).
	// Default: DriverMattn
	Driver string

	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// Models maps model names onto tables.
	Models map[string]Model

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// SQLiteResolver resolves records from the tables of a SQLite database.
//
// Every column of a model's table becomes a record attribute. Relations are
// loaded one level deep: the related records carry their own columns but not
// their own relations.
type SQLiteResolver struct {
	db     *sql.DB
	driver string
	models map[string]Model
	logger *slog.Logger
}

// NewSQLiteResolver opens the database and checks the model mappings.
func NewSQLiteResolver(cfg SQLiteConfig) (*SQLiteResolver, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverMattn
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := ValidateModels(cfg.Models); err != nil {
		return nil, err
	}

	dsn, err := dataSourceName(cfg.Driver, cfg.Path, cfg.BusyTimeout)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, NewStorageError(cfg.Driver, "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStorageError(cfg.Driver, "ping", err)
	}

	logger := cfg.Logger.With("component", "record.storage.sqlite")
	logger.Info("SQLite record storage opened",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"models", len(cfg.Models),
	)

	return &SQLiteResolver{
		db:     db,
		driver: cfg.Driver,
		models: cfg.Models,
		logger: logger,
	}, nil
}

// dataSourceName builds the driver specific DSN carrying the busy timeout.
func dataSourceName(driver, path string, busyTimeout time.Duration) (string, error) {
	ms := busyTimeout.Milliseconds()
	switch driver {
	case DriverMattn:
		return fmt.Sprintf("file:%s?_busy_timeout=%d", path, ms), nil
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, ms), nil
	default:
		return "", fmt.Errorf("unsupported driver %q (must be one of: %s, %s)", driver, DriverMattn, DriverModernc)
	}
}

// DB returns the underlying database handle.
func (s *SQLiteResolver) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteResolver) Close() error {
	return s.db.Close()
}

// Resolve returns the records for ids in the order requested. Ids that do not
// exist produce a *RecordNotFoundError.
func (s *SQLiteResolver) Resolve(ctx context.Context, model string, ids []string) ([]record.Record, error) {
	m, ok := s.models[model]
	if !ok {
		return nil, &UnknownModelError{Model: model}
	}
	if len(ids) == 0 {
		return []record.Record{}, nil
	}

	unique := uniqueIDs(ids)
	rows, err := s.selectIn(ctx, m.TableName(model), m.IDColumnName(), unique)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*record.MapRecord, len(rows))
	for _, row := range rows {
		id := idString(row[m.IDColumnName()])
		byID[id] = record.NewMapRecord(id, row)
	}

	var missing []string
	for _, id := range unique {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, NewRecordNotFoundError(model, missing)
	}

	for attr, rel := range m.Relations {
		if err := s.loadRelation(ctx, attr, rel, unique, byID); err != nil {
			return nil, err
		}
	}

	out := make([]record.Record, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}

	s.logger.Debug("records resolved",
		"model", model,
		"requested", len(ids),
		"loaded", len(byID),
	)
	return out, nil
}

// loadRelation attaches the related records of every parent under attr.
// Parents without related rows get an empty collection.
func (s *SQLiteResolver) loadRelation(ctx context.Context, attr string, rel Relation, parentIDs []string, parents map[string]*record.MapRecord) error {
	target := s.models[rel.Model]
	rows, err := s.selectIn(ctx, target.TableName(rel.Model), rel.ForeignKey, parentIDs)
	if err != nil {
		return err
	}

	children := make(map[string][]record.Record, len(parents))
	for _, row := range rows {
		parent := idString(row[rel.ForeignKey])
		child := record.NewMapRecord(idString(row[target.IDColumnName()]), row)
		children[parent] = append(children[parent], child)
	}

	for id, parent := range parents {
		related := children[id]
		if related == nil {
			related = []record.Record{}
		}
		parent.Set(attr, related)
	}
	return nil
}

// IDs returns every id of model in ascending primary key order.
func (s *SQLiteResolver) IDs(ctx context.Context, model string) ([]string, error) {
	m, ok := s.models[model]
	if !ok {
		return nil, &UnknownModelError{Model: model}
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		quoteIdent(m.IDColumnName()), quoteIdent(m.TableName(model)), quoteIdent(m.IDColumnName()))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, NewStorageError(s.driver, "query", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, NewStorageError(s.driver, "scan", err)
		}
		ids = append(ids, idString(v))
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.driver, "iterate", err)
	}
	return ids, nil
}

// selectIn returns every row of table whose column matches one of values,
// as column name to value maps.
func (s *SQLiteResolver) selectIn(ctx context.Context, table, column string, values []string) ([]map[string]any, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s IN (%s)", quoteIdent(table), quoteIdent(column), placeholders)

	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(s.driver, "query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, NewStorageError(s.driver, "columns", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, NewStorageError(s.driver, "scan", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = columnValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(s.driver, "iterate", err)
	}
	return out, nil
}

// columnValue converts driver values into record attribute values.
func columnValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// idString renders a primary or foreign key value as a record id.
func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
