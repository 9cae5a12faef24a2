package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"takeoff/internal/annotation/models"
)

var ErrNotFound = errors.New("document not found")

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Init запускает миграции.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

const documentColumns = `id, name, file_name, file_url, kind, annotations, tags, page_scales,
        calibration_scale, viewport_width, viewport_height, owner_user_id, project_id,
        company_id, created_at, updated_at`

// Create сохраняет новый пустой документ. Пустой id генерируется.
func (r *Repository) Create(ctx context.Context, doc *models.Document) error {
	if !doc.Kind.Valid() {
		return fmt.Errorf("create document: invalid kind %q", doc.Kind)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	annotations, err := models.EncodeAnnotations(doc.Kind, doc.Measurements, doc.Fixtures)
	if err != nil {
		return err
	}
	cols, err := encodeColumns(doc.Tags, doc.PageScales, doc.CalibrationScale)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO documents (`+documentColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		doc.ID, doc.Name, doc.FileName, doc.FileURL, string(doc.Kind), string(annotations),
		cols.tags, cols.pageScales, cols.calibration,
		doc.ViewportDimensions.Width, doc.ViewportDimensions.Height,
		doc.OwnerUserID, doc.ProjectID, doc.CompanyID,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *Repository) Load(ctx context.Context, id string) (*models.Document, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT `+documentColumns+`
        FROM documents
        WHERE id = ?
    `, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return doc, nil
}

// List отдаёт документы проекта, свежие правки первыми. Пустой projectID
// отдаёт все.
func (r *Repository) List(ctx context.Context, projectID string) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Save перезаписывает разметку документа. Имя и метаданные файла не
// трогаются.
func (r *Repository) Save(ctx context.Context, id string, fields models.SaveFields) error {
	annotations, err := models.EncodeAnnotations(fields.Kind, fields.Measurements, fields.Fixtures)
	if err != nil {
		return err
	}
	cols, err := encodeColumns(fields.Tags, fields.PageScales, fields.CalibrationScale)
	if err != nil {
		return err
	}
	updatedAt := fields.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	res, err := r.db.ExecContext(ctx, `
        UPDATE documents
        SET annotations = ?, tags = ?, page_scales = ?, calibration_scale = ?,
            viewport_width = ?, viewport_height = ?, updated_at = ?
        WHERE id = ? AND kind = ?
    `,
		string(annotations), cols.tags, cols.pageScales, cols.calibration,
		fields.ViewportDimensions.Width, fields.ViewportDimensions.Height,
		formatTime(updatedAt), id, string(fields.Kind),
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return expectOne(res, id)
}

func (r *Repository) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("rename document: empty name")
	}
	res, err := r.db.ExecContext(ctx, `
        UPDATE documents SET name = ?, updated_at = ? WHERE id = ?
    `, name, formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("rename document: %w", err)
	}
	return expectOne(res, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return expectOne(res, id)
}

// ============================================================
// Encoding
// ============================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var (
		doc                                  models.Document
		kind, annotations, tags, scales, cal string
		createdAt, updatedAt                 string
	)
	err := row.Scan(
		&doc.ID, &doc.Name, &doc.FileName, &doc.FileURL, &kind, &annotations, &tags, &scales, &cal,
		&doc.ViewportDimensions.Width, &doc.ViewportDimensions.Height,
		&doc.OwnerUserID, &doc.ProjectID, &doc.CompanyID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Kind = models.Kind(kind)
	if doc.Measurements, doc.Fixtures, err = models.DecodeAnnotations(doc.Kind, []byte(annotations)); err != nil {
		return nil, fmt.Errorf("decode annotations of %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &doc.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(scales), &doc.PageScales); err != nil {
		return nil, fmt.Errorf("decode page scales of %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal([]byte(cal), &doc.CalibrationScale); err != nil {
		return nil, fmt.Errorf("decode calibration of %s: %w", doc.ID, err)
	}
	if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", doc.ID, err)
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of %s: %w", doc.ID, err)
	}
	return &doc, nil
}

type encodedColumns struct {
	tags        string
	pageScales  string
	calibration string
}

func encodeColumns(tags []models.Tag, pageScales map[int]float64, calibration map[int]string) (encodedColumns, error) {
	if tags == nil {
		tags = []models.Tag{}
	}
	if pageScales == nil {
		pageScales = map[int]float64{}
	}
	if calibration == nil {
		calibration = map[int]string{}
	}

	var out encodedColumns
	b, err := json.Marshal(tags)
	if err != nil {
		return out, fmt.Errorf("encode tags: %w", err)
	}
	out.tags = string(b)
	if b, err = json.Marshal(pageScales); err != nil {
		return out, fmt.Errorf("encode page scales: %w", err)
	}
	out.pageScales = string(b)
	if b, err = json.Marshal(calibration); err != nil {
		return out, fmt.Errorf("encode calibration: %w", err)
	}
	out.calibration = string(b)
	return out, nil
}

// timeLayout с фиксированной дробной частью: updated_at сортируется как текст.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	sqlText := string(data)
	_, err = r.db.ExecContext(ctx, sqlText)
	if err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
