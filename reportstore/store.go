// Package reportstore 将引擎的最终统计报告持久化到 SQLite。
package reportstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/darkit/cadence"
)

//go:embed schema.sql
var schema string

// writeTimeout 单次写入报告的超时时间
const writeTimeout = 5 * time.Second

// Store 报告存储，实现 cadence.Reporter
type Store struct {
	db *sql.DB
}

var _ cadence.Reporter = (*Store)(nil)

// Open 打开（必要时创建）数据库文件并建表
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("reportstore: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("reportstore: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("reportstore: open %s: %w", path, err)
	}
	// SQLite 适合单连接写入
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reportstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Report 实现 cadence.Reporter，写入一条报告
func (s *Store) Report(r cadence.Report) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return s.Insert(ctx, r)
}

// Insert 写入一条报告
func (s *Store) Insert(ctx context.Context, r cadence.Report) error {
	if r.Period.Rate > math.MaxInt64 || r.Samples > math.MaxInt64 || r.ToleranceExceeded > math.MaxInt64 {
		return fmt.Errorf("reportstore: report for engine %s overflows int64 columns", r.EngineID)
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO reports (engine_id, period_rate, period_unit, samples, mean_error, mean_compensation,
                     max_error, min_error, tolerance_exceeded, unit, stopped_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.EngineID,
		int64(r.Period.Rate),
		int64(r.Period.Unit),
		int64(r.Samples),
		r.MeanError,
		r.MeanCompensation,
		r.MaxError,
		r.MinError,
		int64(r.ToleranceExceeded),
		int64(r.Unit),
		r.StoppedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("reportstore: insert: %w", err)
	}
	return nil
}

// Recent 按停止时间倒序返回最近的报告
// 参数：
//   - engineID: 为空时返回所有引擎的报告
//   - limit: 小于等于 0 时不限制条数
func (s *Store) Recent(ctx context.Context, engineID string, limit int) ([]cadence.Report, error) {
	query := `
SELECT engine_id, period_rate, period_unit, samples, mean_error, mean_compensation,
       max_error, min_error, tolerance_exceeded, unit, stopped_at
FROM reports`
	var args []any
	if engineID != "" {
		query += " WHERE engine_id = ?"
		args = append(args, engineID)
	}
	query += " ORDER BY stopped_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reportstore: query: %w", err)
	}
	defer rows.Close()

	var out []cadence.Report
	for rows.Next() {
		var (
			r                                            cadence.Report
			rate, periodUnit, samples, exceeded, unit, at int64
		)
		if err := rows.Scan(&r.EngineID, &rate, &periodUnit, &samples, &r.MeanError, &r.MeanCompensation,
			&r.MaxError, &r.MinError, &exceeded, &unit, &at); err != nil {
			return nil, fmt.Errorf("reportstore: scan: %w", err)
		}
		r.Period = cadence.Period{Rate: uint64(rate), Unit: cadence.Unit(periodUnit)}
		r.Samples = uint64(samples)
		r.ToleranceExceeded = uint64(exceeded)
		r.Unit = cadence.Unit(unit)
		r.StoppedAt = time.Unix(0, at).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reportstore: rows: %w", err)
	}
	return out, nil
}
