package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type DoctorReport struct {
	IntegrityCheck       string `json:"integrity_check"`
	InvalidEntries       int    `json:"invalid_entries"`
	DuplicateEntryRows   int    `json:"duplicate_entry_rows"`
	FutureGoalRows       int    `json:"future_goal_rows"`
	RemovedDuplicateRows int    `json:"removed_duplicate_rows,omitempty"`
}

// DefaultBackupName is the file name used when no output path is given.
func DefaultBackupName(now time.Time) string {
	return fmt.Sprintf("nutrilog-%s.db", now.Format("20060102-150405"))
}

// CreateBackup writes a consistent snapshot of db to outPath with VACUUM INTO
// and a .sha256 sidecar next to it.
func CreateBackup(db *sql.DB, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, invalidf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, invalidf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := db.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("snapshot database: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies backupPath over dbPath after verifying its checksum
// sidecar, if one exists. The target database must not be open.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return invalidf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return invalidf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch for %s", backupPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	return copyFile(backupPath, dbPath)
}

func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ObjectUploader is the slice of the S3 API backups need.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Uploader builds an S3 client from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, region string) (*s3.Client, error) {
	opts := make([]func(*awsconfig.LoadOptions) error, 0, 1)
	if strings.TrimSpace(region) != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// UploadBackup puts the backup and its checksum under prefix in bucket and
// returns the object key of the backup.
func UploadBackup(ctx context.Context, up ObjectUploader, bucket, prefix string, info BackupInfo) (string, error) {
	if strings.TrimSpace(bucket) == "" {
		return "", invalidf("backup bucket is not configured (set backup.s3_bucket)")
	}
	f, err := os.Open(info.Path)
	if err != nil {
		return "", fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	key := prefix + filepath.Base(info.Path)
	in := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.sqlite3"),
	}
	if info.Checksum != "" {
		in.Metadata = map[string]string{"sha256": info.Checksum}
	}
	if _, err := up.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload backup to s3://%s/%s: %w", bucket, key, err)
	}
	if info.Checksum != "" {
		_, err := up.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key + ".sha256"),
			Body:        strings.NewReader(info.Checksum + "\n"),
			ContentType: aws.String("text/plain"),
		})
		if err != nil {
			return "", fmt.Errorf("upload backup checksum: %w", err)
		}
	}
	return key, nil
}

// RunDoctor checks storage health. With fix set, exact duplicate entries
// (same name, instant and calories) are collapsed to one row.
func RunDoctor(db *sql.DB, today string, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	if err := db.QueryRow(`PRAGMA integrity_check`).Scan(&report.IntegrityCheck); err != nil {
		return report, fmt.Errorf("doctor integrity check: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM entries WHERE TRIM(name) = '' OR consumed_at_ms <= 0`).Scan(&report.InvalidEntries); err != nil {
		return report, fmt.Errorf("doctor invalid entry check: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM goals WHERE effective_date > ?`, today).Scan(&report.FutureGoalRows); err != nil {
		return report, fmt.Errorf("doctor goal check: %w", err)
	}
	if err := db.QueryRow(`
SELECT COALESCE(SUM(cnt-1),0) FROM (
  SELECT COUNT(*) AS cnt
  FROM entries
  GROUP BY name, consumed_at_ms, calories, source
  HAVING cnt > 1
)
`).Scan(&report.DuplicateEntryRows); err != nil {
		return report, fmt.Errorf("doctor duplicate query: %w", err)
	}

	if fix && report.DuplicateEntryRows > 0 {
		res, err := db.Exec(`
DELETE FROM entries
WHERE rowid NOT IN (
  SELECT MIN(rowid) FROM entries GROUP BY name, consumed_at_ms, calories, source
)
`)
		if err != nil {
			return report, fmt.Errorf("doctor remove duplicates: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return report, fmt.Errorf("doctor remove duplicates rows affected: %w", err)
		}
		report.RemovedDuplicateRows = int(n)
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return fmt.Errorf("sync destination file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
