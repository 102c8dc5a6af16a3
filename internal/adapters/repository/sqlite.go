package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/peergrade/internal/domain/model"
	"github.com/okian/peergrade/internal/domain/types"
	"github.com/okian/peergrade/pkg/metrics"

	_ "modernc.org/sqlite" // driver: sqlite
)

const schema = `
CREATE TABLE IF NOT EXISTS dimensions (
	id        TEXT PRIMARY KEY,
	weight    REAL NOT NULL,
	grade_min REAL NOT NULL,
	grade_max REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS assessments (
	id            TEXT PRIMARY KEY,
	submission_id TEXT NOT NULL,
	reviewer_id   TEXT NOT NULL,
	weight        REAL NOT NULL DEFAULT 1,
	grading_grade REAL
);
CREATE TABLE IF NOT EXISTS grades (
	assessment_id TEXT NOT NULL REFERENCES assessments(id),
	dimension_id  TEXT NOT NULL REFERENCES dimensions(id),
	grade         REAL NOT NULL,
	PRIMARY KEY (assessment_id, dimension_id)
);
CREATE INDEX IF NOT EXISTS idx_assessments_submission ON assessments(submission_id);
CREATE INDEX IF NOT EXISTS idx_assessments_reviewer ON assessments(reviewer_id);
`

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed initializes) the database at path.
// Use ":memory:" for an ephemeral store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The modernc driver serializes access per connection; a single
	// connection avoids table-lock errors under concurrent readers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite database: %w", err)
	}
	return nil
}

// DimensionsInfo loads the rubric dimension table.
func (s *SQLiteStore) DimensionsInfo(ctx context.Context) (map[string]model.DimensionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, weight, grade_min, grade_max FROM dimensions`)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query dimensions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	diminfo := make(map[string]model.DimensionInfo)
	for rows.Next() {
		var dim model.DimensionInfo
		if err := rows.Scan(&dim.ID, &dim.Weight, &dim.Min, &dim.Max); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan dimension: %w", err)
		}
		diminfo[dim.ID] = dim
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate dimensions: %w", err)
	}
	return diminfo, nil
}

// AssessmentRecords streams grade records ordered by submission so that all
// records of one submission are contiguous.
func (s *SQLiteStore) AssessmentRecords(ctx context.Context, restrict []string, fn func(model.GradeRecord) error) error {
	query := `
		SELECT a.id, a.weight, a.reviewer_id, a.grading_grade, a.submission_id, g.dimension_id, g.grade
		FROM assessments a
		JOIN grades g ON g.assessment_id = a.id`
	var args []any
	if len(restrict) > 0 {
		placeholders := strings.Repeat("?,", len(restrict))
		query += ` WHERE a.reviewer_id IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, id := range restrict {
			args = append(args, id)
		}
	}
	query += ` ORDER BY a.submission_id, a.id, g.dimension_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("query assessment records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var rec model.GradeRecord
		var grade sql.NullFloat64
		if err := rows.Scan(&rec.AssessmentID, &rec.AssessmentWeight, &rec.ReviewerID,
			&grade, &rec.SubmissionID, &rec.DimensionID, &rec.Grade); err != nil {
			metrics.RecordStoreError()
			return fmt.Errorf("scan assessment record: %w", err)
		}
		if grade.Valid {
			v := grade.Float64
			rec.GradingGrade = &v
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("iterate assessment records: %w", err)
	}
	return nil
}

// ApplyGradingGrades persists the updates inside a single transaction.
func (s *SQLiteStore) ApplyGradingGrades(ctx context.Context, updates []model.GradingGradeUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreApplyLatency(float64(time.Since(start).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("begin update transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `UPDATE assessments SET grading_grade = ? WHERE id = ?`)
	if err != nil {
		_ = tx.Rollback()
		metrics.RecordStoreError()
		return fmt.Errorf("prepare update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.GradingGrade, u.AssessmentID); err != nil {
			_ = tx.Rollback()
			metrics.RecordStoreError()
			return fmt.Errorf("update assessment %s: %w", u.AssessmentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("commit updates: %w", err)
	}
	return nil
}

// TopReviewers ranks reviewers by their mean grading grade.
func (s *SQLiteStore) TopReviewers(ctx context.Context, n int) ([]types.ReviewerStanding, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT reviewer_id, AVG(grading_grade), COUNT(*)
		FROM assessments
		WHERE grading_grade IS NOT NULL
		GROUP BY reviewer_id
		ORDER BY AVG(grading_grade) DESC, reviewer_id
		LIMIT ?`, n)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("query reviewer ranking: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var standings []types.ReviewerStanding
	for rows.Next() {
		var st types.ReviewerStanding
		if err := rows.Scan(&st.ReviewerID, &st.MeanGradingGrade, &st.Assessments); err != nil {
			metrics.RecordStoreError()
			return nil, fmt.Errorf("scan reviewer standing: %w", err)
		}
		st.Rank = len(standings) + 1
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("iterate reviewer ranking: %w", err)
	}
	return standings, nil
}

// AssessmentGrade returns the stored grading grade for one assessment.
func (s *SQLiteStore) AssessmentGrade(ctx context.Context, assessmentID string) (types.AssessmentGrade, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, submission_id, reviewer_id, grading_grade
		FROM assessments WHERE id = ?`, assessmentID)

	var ag types.AssessmentGrade
	var grade sql.NullFloat64
	if err := row.Scan(&ag.AssessmentID, &ag.SubmissionID, &ag.ReviewerID, &grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.AssessmentGrade{}, ErrNotFound
		}
		metrics.RecordStoreError()
		return types.AssessmentGrade{}, fmt.Errorf("query assessment %s: %w", assessmentID, err)
	}
	if grade.Valid {
		v := grade.Float64
		ag.GradingGrade = &v
	}
	return ag, nil
}

// CountReviewers returns the number of distinct reviewers in the store.
func (s *SQLiteStore) CountReviewers(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT reviewer_id) FROM assessments`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// PutDimension inserts or replaces a rubric dimension.
func (s *SQLiteStore) PutDimension(ctx context.Context, dim model.DimensionInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dimensions (id, weight, grade_min, grade_max) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET weight=excluded.weight, grade_min=excluded.grade_min, grade_max=excluded.grade_max`,
		dim.ID, dim.Weight, dim.Min, dim.Max)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("put dimension %s: %w", dim.ID, err)
	}
	return nil
}

// PutAssessment inserts or replaces an assessment row. A replaced assessment
// loses its grading grade, matching a fresh submission of the same id.
func (s *SQLiteStore) PutAssessment(ctx context.Context, id, submissionID, reviewerID string, weight float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, submission_id, reviewer_id, weight) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET submission_id=excluded.submission_id,
			reviewer_id=excluded.reviewer_id, weight=excluded.weight, grading_grade=NULL`,
		id, submissionID, reviewerID, weight)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("put assessment %s: %w", id, err)
	}
	return nil
}

// PutGrade inserts or replaces one dimension grade of an assessment.
func (s *SQLiteStore) PutGrade(ctx context.Context, assessmentID, dimensionID string, grade float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grades (assessment_id, dimension_id, grade) VALUES (?, ?, ?)
		ON CONFLICT (assessment_id, dimension_id) DO UPDATE SET grade=excluded.grade`,
		assessmentID, dimensionID, grade)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("put grade %s/%s: %w", assessmentID, dimensionID, err)
	}
	return nil
}
