package persist

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/foreman/db"
	"github.com/teranos/foreman/errors"
	"github.com/teranos/foreman/logger"
)

const recordColumns = `id, key, value, int0, int1, int2, int3, int4, int5, int6`

// SQLStore keeps records in the persistent_data table.
type SQLStore struct {
	db      *sql.DB
	session string
	logger  *zap.SugaredLogger
}

// NewSQLStore creates a store scoped to session. The schema must already be
// migrated (see db.Migrate).
func NewSQLStore(conn *sql.DB, session string, log *zap.SugaredLogger) *SQLStore {
	if log == nil {
		log = logger.Logger
	}
	return &SQLStore{
		db:      conn,
		session: session,
		logger:  logger.AddDBSymbol(log).With(logger.FieldSessionID, session),
	}
}

// Session returns the session id the store is scoped to.
func (s *SQLStore) Session() string {
	return s.session
}

func scanRecord(row interface{ Scan(...any) error }) (*Record, error) {
	rec := &Record{}
	err := row.Scan(&rec.ID, &rec.Key, &rec.Value,
		&rec.Ints[0], &rec.Ints[1], &rec.Ints[2], &rec.Ints[3],
		&rec.Ints[4], &rec.Ints[5], &rec.Ints[6])
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM persistent_data
		WHERE session_id = ? AND key = ?
		ORDER BY id
		LIMIT 1`, s.session, key)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, db.Annotate(errors.Wrapf(err, "failed to read record %q", key))
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context, key string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM persistent_data
		WHERE session_id = ? AND key = ?
		ORDER BY id`, s.session, key)
	if err != nil {
		return nil, db.Annotate(errors.Wrapf(err, "failed to list records %q", key))
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan record")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) Add(ctx context.Context, key string) (*Record, error) {
	rec := newRecord(key)
	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO persistent_data (session_id, key, value, int0, int1, int2, int3, int4, int5, int6, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.session, key, rec.Value,
		rec.Ints[0], rec.Ints[1], rec.Ints[2], rec.Ints[3], rec.Ints[4], rec.Ints[5], rec.Ints[6],
		now, now)
	if err != nil {
		return nil, db.Annotate(errors.Wrapf(err, "failed to add record %q", key))
	}
	if rec.ID, err = res.LastInsertId(); err != nil {
		return nil, errors.Wrap(err, "failed to read new record id")
	}
	s.logger.Debugw("Record added", "key", key, "id", rec.ID)
	return rec, nil
}

func (s *SQLStore) Save(ctx context.Context, rec *Record) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE persistent_data
		SET value = ?, int0 = ?, int1 = ?, int2 = ?, int3 = ?, int4 = ?, int5 = ?, int6 = ?, updated_at = ?
		WHERE id = ? AND session_id = ?`,
		rec.Value,
		rec.Ints[0], rec.Ints[1], rec.Ints[2], rec.Ints[3], rec.Ints[4], rec.Ints[5], rec.Ints[6],
		time.Now(), rec.ID, s.session)
	if err != nil {
		return db.Annotate(errors.Wrapf(err, "failed to save record %q", rec.Key))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "record %d (%q) no longer exists", rec.ID, rec.Key)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM persistent_data WHERE id = ? AND session_id = ?`, rec.ID, s.session)
	if err != nil {
		return db.Annotate(errors.Wrapf(err, "failed to delete record %q", rec.Key))
	}
	s.logger.Debugw("Record deleted", "key", rec.Key, "id", rec.ID)
	return nil
}

var _ Store = (*SQLStore)(nil)
