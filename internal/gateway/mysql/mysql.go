package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/sirupsen/logrus"
)

// Store implements gateway.Gateway directly against MySQL, for deployments
// that run the data service in-process instead of behind the REST API. Table
// and column names are interpolated into SQL, so both are checked against a
// whitelist before any query is built; values always travel as placeholders.
type Store struct {
	db  *sqlx.DB
	log *logrus.Logger
}

var allowedTables = map[string]map[string]bool{
	"ailments":     {"id": true, "name": true, "slug": true, "description": true, "created_at": true},
	"remedies":     {"id": true, "ailment_id": true, "name": true, "slug": true, "description": true, "likes_count": true, "created_at": true, "updated_at": true},
	"products":     {"id": true, "remedy_id": true, "name": true, "description": true, "price": true, "status": true, "stock_quantity": true, "created_at": true, "updated_at": true},
	"cart_items":   {"id": true, "user_id": true, "product_id": true, "quantity": true, "created_at": true, "updated_at": true},
	"orders":       {"id": true, "user_id": true, "status": true, "total_amount": true, "created_at": true},
	"order_items":  {"id": true, "order_id": true, "product_id": true, "product_name": true, "unit_price": true, "quantity": true},
	"remedy_likes": {"id": true, "user_id": true, "remedy_id": true, "created_at": true},
}

// Open builds a Store from a DSN, with the pool sized for a small API fleet.
func Open(dsn string, log *logrus.Logger) (*Store, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "mysql: open")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "mysql: ping")
	}

	log.Info("Database connection pool established successfully")
	return &Store{db: db, log: log}, nil
}

func (s *Store) Create(ctx context.Context, table string, fields gateway.Row) (int64, error) {
	cols, err := checkColumns(table, fields)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, gateway.NewError(gateway.CodeInternal, "create with no fields")
	}

	args := make([]any, 0, len(cols))
	for _, col := range cols {
		args = append(args, fields[col])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(len(cols)))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.fail("create", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, s.fail("create", table, err)
	}
	return id, nil
}

func (s *Store) Read(ctx context.Context, table string, filter gateway.Filter, opts *gateway.ReadOptions) ([]gateway.Row, error) {
	where, args, err := whereClause(table, filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT * FROM " + table + where
	if opts != nil && opts.OrderBy != "" {
		if !allowedTables[table][opts.OrderBy] {
			return nil, gateway.NewError(gateway.CodeInternal,
				fmt.Sprintf("unknown order column %q on %s", opts.OrderBy, table))
		}
		query += " ORDER BY " + opts.OrderBy
		if opts.Descending {
			query += " DESC"
		}
	}
	if opts != nil && opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail("read", table, err)
	}
	defer rows.Close()

	var out []gateway.Row
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, s.fail("read", table, err)
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("read", table, err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, table string, filter gateway.Filter, fields gateway.Row) error {
	cols, err := checkColumns(table, fields)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return gateway.NewError(gateway.CodeInternal, "update with no fields")
	}

	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		args = append(args, fields[col])
	}

	where, whereArgs, err := whereClause(table, filter)
	if err != nil {
		return err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(sets, ", "), where)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return s.fail("update", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, filter gateway.Filter) error {
	where, args, err := whereClause(table, filter)
	if err != nil {
		return err
	}
	if where == "" {
		return gateway.NewError(gateway.CodeInternal, "refusing unfiltered delete on "+table)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+where, args...); err != nil {
		return s.fail("delete", table, err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, table string, filter gateway.Filter) (int64, error) {
	where, args, err := whereClause(table, filter)
	if err != nil {
		return 0, err
	}

	var n int64
	err = s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+where, args...)
	if err != nil {
		return 0, s.fail("count", table, err)
	}
	return n, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) fail(op, table string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.NewError(gateway.CodeNotFound, fmt.Sprintf("%s: no rows", table))
	}
	s.log.WithFields(logrus.Fields{"op": op, "table": table, "error": err}).Error("mysql gateway query failed")
	return gateway.NewError(gateway.CodeUnavailable, fmt.Sprintf("%s %s: %v", op, table, err))
}

// checkColumns validates every referenced column and returns them in a stable
// order so generated SQL is deterministic.
func checkColumns(table string, fields map[string]any) ([]string, error) {
	cols, ok := allowedTables[table]
	if !ok {
		return nil, gateway.NewError(gateway.CodeInternal, "unknown table "+table)
	}
	out := make([]string, 0, len(fields))
	for col := range fields {
		if !cols[col] {
			return nil, gateway.NewError(gateway.CodeInternal,
				fmt.Sprintf("unknown column %q on %s", col, table))
		}
		out = append(out, col)
	}
	sort.Strings(out)
	return out, nil
}

func whereClause(table string, filter gateway.Filter) (string, []any, error) {
	cols, err := checkColumns(table, filter)
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, nil
	}

	conds := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		conds = append(conds, col+" = ?")
		args = append(args, filter[col])
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// normalizeRow converts driver []byte values to strings so rows look the same
// regardless of which gateway implementation produced them.
func normalizeRow(row map[string]any) gateway.Row {
	out := make(gateway.Row, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out
}
