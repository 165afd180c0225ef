package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"

	"github.com/dukerupert/calorie-tracker/internal/model"
	"github.com/dukerupert/calorie-tracker/internal/store"
)

var (
	ErrNoPassphrase  = errors.New("backup passphrase not configured")
	ErrNotConfigured = errors.New("s3 storage not configured")
)

const s3Scheme = "s3://"

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type Config struct {
	DBPath string
	Dir    string
	S3     S3Config
}

// Manager takes encrypted snapshots of the meal database and restores them.
type Manager struct {
	cfg     Config
	db      *sql.DB
	backups *store.BackupStore
	client  s3Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager creates a backup manager. db and bs may be nil when the manager
// is only used for Restore.
func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:     cfg,
		db:      db,
		backups: bs,
		logger:  logger,
		now:     time.Now,
	}
	if cfg.S3.enabled() {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Run snapshots the database, encrypts the snapshot into the backup directory
// and uploads it when S3 is configured.
func (m *Manager) Run(ctx context.Context, passphrase string) (*model.Backup, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	filename := fmt.Sprintf("calories-%s.db.enc", m.now().UTC().Format("20060102T150405.000Z"))
	record, err := m.backups.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create backup record: %w", err)
	}
	logger := m.logger.With("backup_id", record.ID, "filename", filename)
	logger.Info("backup started")

	location, size, err := m.snapshot(ctx, filename, passphrase)
	if err != nil {
		if uerr := m.backups.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			logger.Error("failed to record backup failure", "error", uerr)
		}
		logger.Error("backup failed", "error", err)
		return nil, err
	}

	if err := m.backups.UpdateCompleted(record.ID, location, size); err != nil {
		return nil, err
	}
	logger.Info("backup completed", "location", location, "size_bytes", size)

	return m.backups.GetByID(record.ID)
}

func (m *Manager) snapshot(ctx context.Context, filename, passphrase string) (string, int64, error) {
	tmpDir, err := os.MkdirTemp("", "calorie-tracker-backup-")
	if err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dbCopy := filepath.Join(tmpDir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", dbCopy); err != nil {
		return "", 0, fmt.Errorf("snapshot database: %w", err)
	}

	if err := os.MkdirAll(m.cfg.Dir, 0700); err != nil {
		return "", 0, fmt.Errorf("create backup dir: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return "", 0, err
	}
	encFile := filepath.Join(m.cfg.Dir, filename)
	if err := EncryptFile(dbCopy, encFile, passphrase, salt); err != nil {
		return "", 0, fmt.Errorf("encrypt: %w", err)
	}

	stat, err := os.Stat(encFile)
	if err != nil {
		return "", 0, fmt.Errorf("stat encrypted file: %w", err)
	}

	if m.client == nil {
		return encFile, stat.Size(), nil
	}

	if err := m.upload(ctx, encFile, filename, stat.Size()); err != nil {
		return "", 0, err
	}
	return s3Scheme + m.cfg.S3.Bucket + "/" + filename, stat.Size(), nil
}

func (m *Manager) upload(ctx context.Context, path, key string, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open encrypted file: %w", err)
	}
	defer f.Close()

	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}
	return nil
}

// List returns up to limit backups, most recent first.
func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backups.List(limit)
}

// Prune removes all but the keep most recent completed backups, both the
// stored snapshot and its record. It returns how many were removed.
func (m *Manager) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	completed, err := m.backups.ListCompleted()
	if err != nil {
		return 0, err
	}
	if len(completed) <= keep {
		return 0, nil
	}

	removed := 0
	for _, b := range completed[keep:] {
		if err := m.removeSnapshot(ctx, b.Location); err != nil {
			m.logger.Warn("failed to remove backup snapshot", "backup_id", b.ID, "location", b.Location, "error", err)
			continue
		}
		if err := m.backups.Delete(b.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (m *Manager) removeSnapshot(ctx context.Context, location string) error {
	bucket, key, ok := parseS3URI(location)
	if !ok {
		if err := os.Remove(location); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	if m.client == nil {
		return ErrNotConfigured
	}
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object: %w", err)
	}
	// Uploads also leave a local copy behind.
	local := filepath.Join(m.cfg.Dir, filepath.Base(key))
	if err := os.Remove(local); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Restore decrypts the snapshot at src (a local path or s3://bucket/key),
// checks its integrity and replaces the database file. The database must not
// be open while restoring.
func (m *Manager) Restore(ctx context.Context, src, passphrase string) error {
	if passphrase == "" {
		return ErrNoPassphrase
	}

	tmpDir, err := os.MkdirTemp("", "calorie-tracker-restore-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	encFile := src
	if bucket, key, ok := parseS3URI(src); ok {
		encFile = filepath.Join(tmpDir, "snapshot.db.enc")
		if err := m.download(ctx, bucket, key, encFile); err != nil {
			return err
		}
	}

	decFile := filepath.Join(tmpDir, "snapshot.db")
	if err := DecryptFile(encFile, decFile, passphrase); err != nil {
		return fmt.Errorf("decrypt backup: %w", err)
	}

	if err := verifySnapshot(ctx, decFile); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.cfg.DBPath), 0700); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}

	// Write next to the target first so the final swap is a rename.
	staged := m.cfg.DBPath + ".restore"
	if err := copyFile(decFile, staged); err != nil {
		os.Remove(staged)
		return fmt.Errorf("stage database: %w", err)
	}

	// A stale WAL would be replayed on top of the restored file.
	os.Remove(m.cfg.DBPath + "-wal")
	os.Remove(m.cfg.DBPath + "-shm")

	if err := os.Rename(staged, m.cfg.DBPath); err != nil {
		os.Remove(staged)
		return fmt.Errorf("replace database: %w", err)
	}

	m.logger.Info("restore complete", "source", src, "db_path", m.cfg.DBPath)
	return nil
}

func (m *Manager) download(ctx context.Context, bucket, key, dst string) error {
	if m.client == nil {
		return ErrNotConfigured
	}
	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		return fmt.Errorf("write downloaded file: %w", err)
	}
	return out.Close()
}

func verifySnapshot(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}

	var tables int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'meals'`,
	).Scan(&tables)
	if err != nil {
		return fmt.Errorf("inspect restored db: %w", err)
	}
	if tables == 0 {
		return errors.New("restored db has no meals table")
	}
	return nil
}

func parseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, s3Scheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
