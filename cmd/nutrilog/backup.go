package nutrilog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/nutrilog/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
}

var (
	backupOut    string
	backupDir    string
	backupUpload bool
	restoreFile  string
	restoreForce bool
)

func defaultBackupDir(db string) string {
	if backupDir != "" {
		return backupDir
	}
	return filepath.Join(filepath.Dir(db), "backups")
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a database backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			out := backupOut
			if out == "" {
				out = filepath.Join(defaultBackupDir(e.DBPath), service.DefaultBackupName(time.Now()))
			}
			info, err := service.CreateBackup(e.DB, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
			if backupUpload {
				return uploadBackup(cmd, e, info)
			}
			return nil
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := resolveDBPath(cfg)
		if err != nil {
			return err
		}
		items, err := service.ListBackups(defaultBackupDir(db))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "FILE\tSIZE\tCREATED\tCHECKSUM")
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\t%s\n", it.Path, it.SizeBytes, it.CreatedAt.Format(time.RFC3339), it.Checksum)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the database from a backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := resolveDBPath(cfg)
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(restoreFile, db, restoreForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s\n", restoreFile)
		return nil
	},
}

var backupUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create a backup and copy it to the configured S3 bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(e *env) error {
			if _, err := s3Bucket(e); err != nil {
				return err
			}
			out := filepath.Join(defaultBackupDir(e.DBPath), service.DefaultBackupName(time.Now()))
			info, err := service.CreateBackup(e.DB, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
			return uploadBackup(cmd, e, info)
		})
	},
}

func s3Bucket(e *env) (string, error) {
	bucket := strings.TrimSpace(e.Config.Backup.S3Bucket)
	if bucket == "" {
		return "", fmt.Errorf("backup.s3_bucket is not configured (nutrilog config set backup.s3_bucket <name>)")
	}
	return bucket, nil
}

func uploadBackup(cmd *cobra.Command, e *env, info service.BackupInfo) error {
	bucket, err := s3Bucket(e)
	if err != nil {
		return err
	}
	client, err := service.NewS3Uploader(cmd.Context(), e.Config.Backup.S3Region)
	if err != nil {
		return err
	}
	key, err := service.UploadBackup(cmd.Context(), client, bucket, e.Config.Backup.S3Prefix, info)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to s3://%s/%s\n", bucket, key)
	return nil
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd, backupUploadCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path")
	backupCreateCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (used when --out is empty)")
	backupCreateCmd.Flags().BoolVar(&backupUpload, "upload", false, "Also upload to S3")
	backupListCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: alongside DB under backups/)")
	backupUploadCmd.Flags().StringVar(&backupDir, "dir", "", "Local backup directory")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup .db file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite existing DB if present")
}
