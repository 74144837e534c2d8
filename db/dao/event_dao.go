package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/workpulse-io/workpulse/db"
	"github.com/workpulse-io/workpulse/model"
	"github.com/workpulse-io/workpulse/pkg/retry"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Millisecond * 500
)

var eventColumns = []string{
	"source_kind_id",
	"parent_item_id",
	"event_id",
	"event_type",
	"relation_type",
	"employee_id",
	"event_time_utc",
	"week",
	"timezone",
	"event_time",
	"event_properties",
	"relation_properties",
	"metrics",
	"version",
	"specific_version",
}

type EventDAO struct {
	db    *db.DB
	log   *zap.SugaredLogger
	table string

	strategy    retry.Strategy
	maxAttempts int
	baseDelay   time.Duration
	fixedDelays []int64

	mux     sync.Mutex
	ensured bool
}

type OptionFunc func(*EventDAO)

func WithMaxAttempts(n int) OptionFunc {
	return func(dao *EventDAO) { dao.maxAttempts = n }
}

func WithBaseDelay(d time.Duration) OptionFunc {
	return func(dao *EventDAO) { dao.baseDelay = d }
}

// WithFixedDelays switches to the fixed retry strategy, making one retry per
// configured delay (in seconds).
func WithFixedDelays(seconds []int64) OptionFunc {
	return func(dao *EventDAO) {
		dao.strategy = retry.FixedStrategy
		dao.fixedDelays = seconds
	}
}

func NewEventDAO(d *db.DB, table string, opts ...OptionFunc) (*EventDAO, error) {
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}
	dao := &EventDAO{
		db:          d,
		log:         zap.S().Named("dao"),
		table:       table,
		strategy:    retry.BackoffStrategy,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(dao)
	}
	return dao, nil
}

func (dao *EventDAO) Table() string {
	return dao.table
}

// EnsureTable creates the events table on first use. The table name was
// validated at construction time. Statements run one at a time; the pgx
// driver rejects multi-statement strings.
func (dao *EventDAO) EnsureTable(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			source_kind_id VARCHAR NOT NULL,
			parent_item_id VARCHAR,
			event_id VARCHAR NOT NULL UNIQUE,

			event_type VARCHAR NOT NULL,
			relation_type VARCHAR NOT NULL,

			employee_id VARCHAR NOT NULL,

			event_time_utc TIMESTAMP NOT NULL,
			week DATE NOT NULL,
			timezone VARCHAR,
			event_time TIMESTAMP,

			event_properties JSONB,
			relation_properties JSONB,
			metrics JSONB,

			version VARCHAR,
			specific_version VARCHAR
		)`, dao.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_item_id_idx ON %s (parent_item_id)`,
			dao.table, dao.table),
	}

	for _, statement := range statements {
		if _, err := queryable(ctx, dao.db.Handle()).ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

// ensureTable runs EnsureTable once; a failure is retried by the next batch.
func (dao *EventDAO) ensureTable(ctx context.Context) error {
	dao.mux.Lock()
	defer dao.mux.Unlock()

	if dao.ensured {
		return nil
	}
	if err := dao.EnsureTable(ctx); err != nil {
		return err
	}
	dao.ensured = true
	return nil
}

// InsertBatch persists events as a single transaction: new rows are inserted
// with insert-or-ignore semantics keyed on event_id, then descriptive fields
// are backfilled onto every stored row sharing a parent_item_id present in
// the batch. Transient failures are retried with exponential backoff; a
// closed pool is recreated before the next attempt. The returned count covers
// newly inserted rows only.
func (dao *EventDAO) InsertBatch(ctx context.Context, events []*model.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	if err := dao.ensureTable(ctx); err != nil {
		return 0, err
	}

	var inserted int
	attempts := 0

	err := retry.Do(ctx, dao.newRetry(), IsTransient, func() error {
		attempts++
		handle := dao.db.Handle()

		err := dao.db.TX(ctx, func(ctx context.Context) error {
			var err error
			inserted, err = dao.insertBatch(ctx, events)
			if err != nil {
				return err
			}
			return dao.backfillParents(ctx, events)
		})
		if err != nil {
			dao.log.Warnf("insert batch attempt %d failed: %v", attempts, err)
			if IsPoolClosed(err) {
				if resetErr := dao.db.Reset(handle); resetErr != nil {
					dao.log.Errorf("pool recreation failed: %v", resetErr)
				}
			}
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert batch failed after %d attempts: %w", attempts, err)
	}

	dao.log.Debugf("inserted %d/%d events into %s", inserted, len(events), dao.table)
	return inserted, nil
}

func (dao *EventDAO) newRetry() retry.Retry {
	if dao.strategy == retry.FixedStrategy {
		return retry.NewRetry(retry.FixedStrategy, retry.WithFixedDelay(dao.fixedDelays))
	}
	return retry.NewRetry(retry.BackoffStrategy,
		retry.WithBaseDelay(dao.baseDelay),
		retry.WithMaxAttempts(dao.maxAttempts),
	)
}

func (dao *EventDAO) insertBatch(ctx context.Context, events []*model.Event) (int, error) {
	builder := psql.Insert(dao.table).Columns(eventColumns...)
	for _, e := range events {
		builder = builder.Values(
			e.SourceKindID,
			nullable(e.ParentItemID),
			e.EventID,
			e.EventType,
			e.RelationType,
			e.EmployeeID,
			e.EventTimeUTC,
			e.Week,
			e.Timezone,
			e.EventTime,
			e.EventProperties,
			e.RelationProperties,
			e.Metrics,
			e.Version,
			e.SpecificVersion,
		)
	}
	statement, args, err := builder.Suffix("ON CONFLICT (event_id) DO NOTHING").ToSql()
	if err != nil {
		return 0, err
	}

	result, err := queryable(ctx, dao.db.Handle()).ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// backfillParents refreshes event_properties, metrics and version fields on
// all rows sharing a parent with this batch, using the latest value the
// batch carries for each parent. Concurrent batches touching the same parent
// resolve last-writer-wins.
func (dao *EventDAO) backfillParents(ctx context.Context, events []*model.Event) error {
	statement, args := buildBackfill(dao.table, events)
	if statement == "" {
		return nil
	}

	result, err := queryable(ctx, dao.db.Handle()).ExecContext(ctx, statement, args...)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil {
		dao.log.Debugf("backfilled properties on %d rows", n)
	}
	return nil
}

func buildBackfill(table string, events []*model.Event) (string, []any) {
	// Last occurrence in the batch wins per parent.
	latest := make(map[string]*model.Event)
	order := make([]string, 0)
	for _, e := range events {
		if e.ParentItemID == "" {
			continue
		}
		if _, seen := latest[e.ParentItemID]; !seen {
			order = append(order, e.ParentItemID)
		}
		latest[e.ParentItemID] = e
	}
	if len(order) == 0 {
		return "", nil
	}

	var values strings.Builder
	args := make([]any, 0, len(order)*5)
	for i, parent := range order {
		e := latest[parent]
		if i > 0 {
			values.WriteString(", ")
		}
		base := i * 5
		fmt.Fprintf(&values, "($%d::varchar, $%d::jsonb, $%d::jsonb, $%d::varchar, $%d::varchar)",
			base+1, base+2, base+3, base+4, base+5)
		args = append(args, parent, mustJSON(e.EventProperties), mustJSON(e.Metrics), e.Version, e.SpecificVersion)
	}

	statement := fmt.Sprintf(`
		UPDATE %s SET
			event_properties = data.event_properties,
			metrics = data.metrics,
			version = data.version,
			specific_version = data.specific_version
		FROM (VALUES %s) AS data(parent_item_id, event_properties, metrics, version, specific_version)
		WHERE %s.parent_item_id = data.parent_item_id
	`, table, values.String(), table)

	return statement, args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mustJSON(m model.Properties) string {
	if m == nil {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return string(b)
}
