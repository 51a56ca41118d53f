package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"clipper/internal/config"
)

// FileName is the database file inside paths.log_dir.
const FileName = "history.db"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ExportKind names the transform that produced an export.
type ExportKind string

const (
	ExportVertical     ExportKind = "vertical"
	ExportBurn         ExportKind = "burn"
	ExportExtractAudio ExportKind = "extract_audio"
)

// Acquisition is one recorded Acquire call.
type Acquisition struct {
	ID               int64     `json:"id"`
	RequestID        string    `json:"request_id,omitempty"`
	URL              string    `json:"url"`
	VideoID          string    `json:"video_id,omitempty"`
	Title            string    `json:"title,omitempty"`
	WorkingDirectory string    `json:"working_directory,omitempty"`
	Warning          string    `json:"warning,omitempty"`
	HasVideo         bool      `json:"has_video"`
	HasAudio         bool      `json:"has_audio"`
	HasSubtitles     bool      `json:"has_subtitles"`
	HasThumbnail     bool      `json:"has_thumbnail"`
	CreatedAt        time.Time `json:"created_at"`
}

// Export is one recorded transform.
type Export struct {
	ID           int64      `json:"id"`
	RequestID    string     `json:"request_id,omitempty"`
	Kind         ExportKind `json:"kind"`
	SourcePath   string     `json:"source_path"`
	OutputPath   string     `json:"output_path,omitempty"`
	Style        string     `json:"style,omitempty"`
	Success      bool       `json:"success"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the history database in paths.log_dir.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("history: nil config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, FileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordAcquisition inserts an acquisition row and returns its id.
func (s *Store) RecordAcquisition(ctx context.Context, rec Acquisition) (int64, error) {
	if strings.TrimSpace(rec.URL) == "" {
		return 0, errors.New("record acquisition: url is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO acquisitions (
            request_id, url, video_id, title, working_directory, warning,
            has_video, has_audio, has_subtitles, has_thumbnail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(rec.RequestID),
		rec.URL,
		nullableString(rec.VideoID),
		nullableString(rec.Title),
		nullableString(rec.WorkingDirectory),
		nullableString(rec.Warning),
		boolToInt(rec.HasVideo),
		boolToInt(rec.HasAudio),
		boolToInt(rec.HasSubtitles),
		boolToInt(rec.HasThumbnail),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert acquisition: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordExport inserts an export row and returns its id.
func (s *Store) RecordExport(ctx context.Context, rec Export) (int64, error) {
	if strings.TrimSpace(rec.SourcePath) == "" || rec.Kind == "" {
		return 0, errors.New("record export: kind and source path are required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO exports (
            request_id, kind, source_path, output_path, style, success, error_message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(rec.RequestID),
		string(rec.Kind),
		rec.SourcePath,
		nullableString(rec.OutputPath),
		nullableString(rec.Style),
		boolToInt(rec.Success),
		nullableString(rec.ErrorMessage),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const acquisitionColumns = "id, request_id, url, video_id, title, working_directory, warning, has_video, has_audio, has_subtitles, has_thumbnail, created_at"

// RecentAcquisitions returns up to limit rows, newest first.
func (s *Store) RecentAcquisitions(ctx context.Context, limit int) ([]Acquisition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+acquisitionColumns+` FROM acquisitions ORDER BY created_at DESC, id DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list acquisitions: %w", err)
	}
	defer rows.Close()

	var out []Acquisition
	for rows.Next() {
		var (
			rec                           Acquisition
			requestID, videoID, title     sql.NullString
			workDir, warning              sql.NullString
			video, audio, subs, thumbnail int64
			createdRaw                    string
		)
		if err := rows.Scan(&rec.ID, &requestID, &rec.URL, &videoID, &title, &workDir, &warning,
			&video, &audio, &subs, &thumbnail, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan acquisition: %w", err)
		}
		rec.RequestID = requestID.String
		rec.VideoID = videoID.String
		rec.Title = title.String
		rec.WorkingDirectory = workDir.String
		rec.Warning = warning.String
		rec.HasVideo = video != 0
		rec.HasAudio = audio != 0
		rec.HasSubtitles = subs != 0
		rec.HasThumbnail = thumbnail != 0
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			rec.CreatedAt = created
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate acquisitions: %w", err)
	}
	return out, nil
}

const exportColumns = "id, request_id, kind, source_path, output_path, style, success, error_message, created_at"

// RecentExports returns up to limit rows, newest first.
func (s *Store) RecentExports(ctx context.Context, limit int) ([]Export, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+exportColumns+` FROM exports ORDER BY created_at DESC, id DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		var (
			rec                              Export
			requestID, output, style, errMsg sql.NullString
			kind, createdRaw                 string
			success                          int64
		)
		if err := rows.Scan(&rec.ID, &requestID, &kind, &rec.SourcePath, &output, &style, &success, &errMsg, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		rec.RequestID = requestID.String
		rec.Kind = ExportKind(kind)
		rec.OutputPath = output.String
		rec.Style = style.String
		rec.Success = success != 0
		rec.ErrorMessage = errMsg.String
		if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
			rec.CreatedAt = created
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return out, nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
