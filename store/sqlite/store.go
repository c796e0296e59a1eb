// Package sqlite persists key object documents in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/caio-sobreiro/dicomko/dicom"
	koerrors "github.com/caio-sobreiro/dicomko/errors"
	"github.com/caio-sobreiro/dicomko/keyobject"
)

// Store implements keyobject.Store on SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string, opts ...Option) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, opts...), nil
}

// New wraps an already migrated database
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// DB returns the underlying database
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Register inserts doc and its references. Registering a document twice
// replaces the stored copy.
func (s *Store) Register(ctx context.Context, doc *keyobject.Document) error {
	createdAt := doc.CreatedAt()
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO documents(sop_instance_uid, series_uid, study_uid, description, editable, version, created_at, updated_at, dataset)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sop_instance_uid) DO UPDATE SET
		 series_uid=excluded.series_uid,
		 study_uid=excluded.study_uid,
		 description=excluded.description,
		 editable=excluded.editable,
		 version=excluded.version,
		 updated_at=excluded.updated_at,
		 dataset=excluded.dataset;
		`, doc.UID(), doc.SeriesUID(), doc.StudyInstanceUID(), doc.Description(), doc.Editable(),
			doc.Version(), createdAt.UTC().Format(time.RFC3339Nano), now(), doc.Attributes().EncodeDataset())
		if err != nil {
			return err
		}
		return replaceReferences(ctx, tx, doc)
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", doc.UID(), err)
	}

	s.log().DebugContext(ctx, "Stored key object document",
		"ko_uid", doc.UID(),
		"series_uid", doc.SeriesUID())
	return nil
}

// SaveReferences replaces the stored reference set of doc.
func (s *Store) SaveReferences(ctx context.Context, doc *keyobject.Document) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE documents SET updated_at=? WHERE sop_instance_uid=?`, now(), doc.UID())
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return koerrors.ErrNotFound
		}
		return replaceReferences(ctx, tx, doc)
	})
	if err != nil {
		return fmt.Errorf("save references of %s: %w", doc.UID(), err)
	}
	return nil
}

func replaceReferences(ctx context.Context, tx *sql.Tx, doc *keyobject.Document) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_references WHERE document_uid=?`, doc.UID()); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO document_references(document_uid, sop_instance_uid, sop_class_uid, study_instance_uid, series_instance_uid)
	VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, ref := range doc.References() {
		if _, err := stmt.ExecContext(ctx, doc.UID(), ref.SOPInstanceUID, ref.SOPClassUID, ref.StudyInstanceUID, ref.SeriesInstanceUID); err != nil {
			return err
		}
	}
	return nil
}

// UnderlyingDocument returns the SOP Instance UID the document is stored under
func (s *Store) UnderlyingDocument(doc *keyobject.Document) string {
	return doc.UID()
}

const selectDocuments = `SELECT sop_instance_uid, series_uid, editable, version, created_at, dataset FROM documents`

// ListForSeries returns the documents registered against seriesUID, oldest first.
func (s *Store) ListForSeries(ctx context.Context, seriesUID string) ([]*keyobject.Document, error) {
	return s.query(ctx, selectDocuments+` WHERE series_uid=? ORDER BY version, rowid`, seriesUID)
}

// List returns every stored document, oldest first.
func (s *Store) List(ctx context.Context) ([]*keyobject.Document, error) {
	return s.query(ctx, selectDocuments+` ORDER BY series_uid, version, rowid`)
}

// Get returns the document stored under sopInstanceUID.
func (s *Store) Get(ctx context.Context, sopInstanceUID string) (*keyobject.Document, error) {
	docs, err := s.query(ctx, selectDocuments+` WHERE sop_instance_uid=?`, sopInstanceUID)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, koerrors.ErrNotFound
	}
	return docs[0], nil
}

// Delete removes the document stored under sopInstanceUID and its references.
func (s *Store) Delete(ctx context.Context, sopInstanceUID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE sop_instance_uid=?`, sopInstanceUID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return koerrors.ErrNotFound
	}
	return nil
}

type documentRow struct {
	uid       string
	seriesUID string
	editable  bool
	version   uint64
	createdAt string
	dataset   []byte
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]*keyobject.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var found []documentRow
	for rows.Next() {
		var r documentRow
		if err := rows.Scan(&r.uid, &r.seriesUID, &r.editable, &r.version, &r.createdAt, &r.dataset); err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// References are read after the document cursor is closed: the pool
	// holds a single connection.
	out := make([]*keyobject.Document, 0, len(found))
	for _, r := range found {
		doc, err := s.hydrate(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) hydrate(ctx context.Context, r documentRow) (*keyobject.Document, error) {
	ds, err := dicom.ParseDataset(r.dataset)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", r.uid, err)
	}
	refs, err := s.references(ctx, r.uid)
	if err != nil {
		return nil, err
	}

	opts := []keyobject.DocumentOption{
		keyobject.WithSeriesUID(r.seriesUID),
		keyobject.WithVersion(r.version),
		keyobject.WithReferences(refs...),
	}
	if createdAt, err := time.Parse(time.RFC3339Nano, r.createdAt); err == nil {
		opts = append(opts, keyobject.WithCreatedAt(createdAt))
	} else {
		s.log().WarnContext(ctx, "Invalid document creation time", "ko_uid", r.uid, "created_at", r.createdAt)
	}
	if !r.editable {
		opts = append(opts, keyobject.ReadOnly())
	}
	return keyobject.NewDocument(ds, opts...), nil
}

func (s *Store) references(ctx context.Context, documentUID string) ([]keyobject.Reference, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT sop_instance_uid, sop_class_uid, study_instance_uid, series_instance_uid
	FROM document_references WHERE document_uid=? ORDER BY sop_instance_uid`, documentUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []keyobject.Reference
	for rows.Next() {
		var ref keyobject.Reference
		if err := rows.Scan(&ref.SOPInstanceUID, &ref.SOPClassUID, &ref.StudyInstanceUID, &ref.SeriesInstanceUID); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// IsNotFound reports whether err means the document does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, koerrors.ErrNotFound)
}

var _ keyobject.Store = (*Store)(nil)
