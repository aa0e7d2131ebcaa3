package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/veloxsql/dialect"
)

// StatementStats counts the statements sent through a StatsDriver.
type StatementStats struct {
	Inserts  atomic.Int64
	Updates  atomic.Int64
	Deletes  atomic.Int64
	Selects  atomic.Int64
	Other    atomic.Int64
	Duration atomic.Int64 // nanoseconds
	Slow     atomic.Int64
	Errors   atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *StatementStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Inserts:  s.Inserts.Load(),
		Updates:  s.Updates.Load(),
		Deletes:  s.Deletes.Load(),
		Selects:  s.Selects.Load(),
		Other:    s.Other.Load(),
		Duration: time.Duration(s.Duration.Load()),
		Slow:     s.Slow.Load(),
		Errors:   s.Errors.Load(),
	}
}

// Reset resets all counters to zero.
func (s *StatementStats) Reset() {
	for _, c := range []*atomic.Int64{&s.Inserts, &s.Updates, &s.Deletes, &s.Selects, &s.Other, &s.Duration, &s.Slow, &s.Errors} {
		c.Store(0)
	}
}

func (s *StatementStats) counter(query string) *atomic.Int64 {
	verb, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	switch strings.ToUpper(verb) {
	case "INSERT":
		return &s.Inserts
	case "UPDATE":
		return &s.Updates
	case "DELETE":
		return &s.Deletes
	case "SELECT":
		return &s.Selects
	default:
		return &s.Other
	}
}

// StatsSnapshot is a point-in-time copy of StatementStats.
type StatsSnapshot struct {
	Inserts  int64
	Updates  int64
	Deletes  int64
	Selects  int64
	Other    int64
	Duration time.Duration
	Slow     int64
	Errors   int64
}

// Total returns the number of statements counted.
func (s StatsSnapshot) Total() int64 {
	return s.Inserts + s.Updates + s.Deletes + s.Selects + s.Other
}

// Avg returns the average statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	if n := s.Total(); n > 0 {
		return s.Duration / time.Duration(n)
	}
	return 0
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"inserts=%d updates=%d deletes=%d selects=%d other=%d duration=%s avg=%s slow=%d errors=%d",
		s.Inserts, s.Updates, s.Deletes, s.Selects, s.Other, s.Duration, s.Avg(), s.Slow, s.Errors,
	)
}

// StatsDriver wraps a Driver and counts the statements it runs, including
// those run inside transactions. Statements slower than the threshold are
// logged at warn level.
type StatsDriver struct {
	*Driver
	stats *StatementStats
	log   *slog.Logger

	mu        sync.RWMutex
	threshold time.Duration
}

// StatsOption configures the StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the slow statement threshold. Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithStatsLogger sets the logger of slow statements.
func WithStatsLogger(l *slog.Logger) StatsOption {
	return func(s *StatsDriver) {
		s.log = l
	}
}

// NewStatsDriver wraps drv with statement statistics.
//
//	drv := sql.NewStatsDriver(sql.OpenDB(dialect.MySQL, db), sql.WithSlowThreshold(time.Second))
//	d := sql.MySQL(manager{drv})
//	...
//	fmt.Println(drv.Stats().Snapshot())
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:    drv,
		stats:     &StatementStats{},
		log:       slog.Default(),
		threshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stats returns the live counters.
func (d *StatsDriver) Stats() *StatementStats { return d.stats }

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// SetSlowThreshold updates the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.threshold = threshold
}

// Query implements the dialect.ExecQuerier interface.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.record(ctx, query, start, err)
	return err
}

// Exec implements the dialect.ExecQuerier interface.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, query, start, err)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, start time.Time, err error) {
	elapsed := time.Since(start)
	d.stats.counter(query).Add(1)
	d.stats.Duration.Add(int64(elapsed))
	if err != nil {
		d.stats.Errors.Add(1)
	}
	if elapsed > d.SlowThreshold() {
		d.stats.Slow.Add(1)
		d.log.WarnContext(ctx, "slow statement", "dialect", d.Dialect(), "duration", elapsed, "query", query)
	}
}

// Tx starts a transaction whose statements are counted as well.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx wraps a transaction of a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query implements the dialect.ExecQuerier interface.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.driver.record(ctx, query, start, err)
	return err
}

// Exec implements the dialect.ExecQuerier interface.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.record(ctx, query, start, err)
	return err
}

// DebugDriver wraps a Driver and logs every statement at debug level.
type DebugDriver struct {
	*Driver
	log *slog.Logger
}

// NewDebugDriver wraps drv with statement logging. A nil logger means slog.Default.
func NewDebugDriver(drv *Driver, log *slog.Logger) *DebugDriver {
	if log == nil {
		log = slog.Default()
	}
	return &DebugDriver{Driver: drv, log: log.With("dialect", drv.Dialect())}
}

// Query implements the dialect.ExecQuerier interface.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "query", "query", query)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements the dialect.ExecQuerier interface.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "exec", "query", query)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction with statement logging.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.log.DebugContext(ctx, "begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, ctx: ctx, log: d.log}, nil
}

// DebugTx wraps a transaction of a DebugDriver.
type DebugTx struct {
	dialect.Tx
	ctx context.Context
	log *slog.Logger
}

// Query implements the dialect.ExecQuerier interface.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.log.DebugContext(ctx, "tx query", "query", query)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec implements the dialect.ExecQuerier interface.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.log.DebugContext(ctx, "tx exec", "query", query)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit commits the transaction and logs it.
func (tx *DebugTx) Commit() error {
	tx.log.DebugContext(tx.ctx, "commit transaction")
	return tx.Tx.Commit()
}

// Rollback rolls back the transaction and logs it.
func (tx *DebugTx) Rollback() error {
	tx.log.DebugContext(tx.ctx, "rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
