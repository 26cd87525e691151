// Package backup dumps the remote database to compressed archives and
// ships them to S3 with a retention window.
package backup

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Config holds backup configuration
type Config struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
	DatabaseURL        string
	LocalStorePath     string
	LocalBackupDir     string
	RetentionDays      int
}

// Service handles database backups
type Service struct {
	s3Client       *s3.Client
	bucket         string
	databaseURL    string
	localStorePath string
	localBackupDir string
	retentionDays  int
}

// NewService creates a new backup service
func NewService(cfg Config) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if err := os.MkdirAll(cfg.LocalBackupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	return &Service{
		s3Client:       s3.NewFromConfig(awsCfg),
		bucket:         cfg.S3Bucket,
		databaseURL:    cfg.DatabaseURL,
		localStorePath: cfg.LocalStorePath,
		localBackupDir: cfg.LocalBackupDir,
		retentionDays:  cfg.RetentionDays,
	}, nil
}

// Result describes one completed backup.
type Result struct {
	Filename     string
	FileSize     int64
	S3Key        string
	Duration     time.Duration
	UploadedToS3 bool
}

// Create writes a gzipped backup and uploads it to S3 when a bucket is
// configured. With a remote database this is a pg_dump; without one the
// local store file is archived instead.
func (s *Service) Create(ctx context.Context) (*Result, error) {
	start := time.Now()

	timestamp := time.Now().UTC().Format("20060102-150405")
	suffix := "sql.gz"
	if s.databaseURL == "" {
		suffix = "db.gz"
	}
	filename := fmt.Sprintf("nestdesk-backup-%s.%s", timestamp, suffix)
	localPath := filepath.Join(s.localBackupDir, filename)

	file, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)

	log.Printf("🔄 Starting backup: %s", filename)
	if s.databaseURL != "" {
		cmd := exec.CommandContext(ctx, "pg_dump", s.databaseURL)
		cmd.Stdout = gzipWriter
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			gzipWriter.Close()
			os.Remove(localPath)
			return nil, fmt.Errorf("pg_dump failed: %w", err)
		}
	} else {
		source, err := os.Open(s.localStorePath)
		if err != nil {
			gzipWriter.Close()
			os.Remove(localPath)
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		_, err = io.Copy(gzipWriter, source)
		source.Close()
		if err != nil {
			gzipWriter.Close()
			os.Remove(localPath)
			return nil, fmt.Errorf("failed to archive local store: %w", err)
		}
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup file: %w", err)
	}

	result := &Result{
		Filename: filename,
		FileSize: fileInfo.Size(),
		S3Key:    fmt.Sprintf("backups/%s", filename),
		Duration: time.Since(start),
	}

	if s.bucket != "" {
		if err := s.upload(ctx, localPath, result.S3Key); err != nil {
			return result, fmt.Errorf("backup created locally but S3 upload failed: %w", err)
		}
		result.UploadedToS3 = true
		log.Printf("✅ Backup uploaded to S3: s3://%s/%s", s.bucket, result.S3Key)

		if err := s.pruneOld(ctx); err != nil {
			log.Printf("⚠️  Failed to prune old backups: %v", err)
		}
	}

	log.Printf("✅ Backup completed: %s (size: %d bytes, duration: %s)",
		filename, result.FileSize, result.Duration)
	return result, nil
}

func (s *Service) upload(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         file,
		StorageClass: types.StorageClassStandardIa,
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// pruneOld deletes archives older than the retention window.
func (s *Service) pruneOld(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)
	listing, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return fmt.Errorf("failed to list S3 objects: %w", err)
	}

	var deleted int
	for _, obj := range listing.Contents {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    obj.Key,
		})
		if err != nil {
			log.Printf("⚠️  Failed to delete old backup %s: %v", *obj.Key, err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		log.Printf("✅ Pruned %d old backups (retention: %d days)", deleted, s.retentionDays)
	}
	return nil
}

// Info describes one stored archive.
type Info struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// List returns the archives currently in the bucket.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	if s.bucket == "" {
		return nil, fmt.Errorf("S3 bucket not configured")
	}

	listing, err := s.s3Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String("backups/"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list S3 objects: %w", err)
	}

	backups := make([]Info, 0, len(listing.Contents))
	for _, obj := range listing.Contents {
		backups = append(backups, Info{
			Key:          *obj.Key,
			Size:         *obj.Size,
			LastModified: *obj.LastModified,
		})
	}
	return backups, nil
}
