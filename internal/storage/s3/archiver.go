package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"faturas/internal/logger"
	"faturas/internal/port"
)

var contentTypes = map[string]string{
	".pdf": "application/pdf",
	".xml": "application/xml",
}

type archiver struct {
	store  port.ObjectStorage
	bucket string
	prefix string
	log    *zap.Logger
}

// NewArchiver creates a DocumentArchiver that uploads documents to
// bucket/prefix/<name> and then removes the local copy.
func NewArchiver(store port.ObjectStorage, bucket, prefix string, log *zap.Logger) port.DocumentArchiver {
	return &archiver{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		log:    logger.OrNop(log),
	}
}

func (a *archiver) Archive(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("archiving %s: %w", localPath, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return "", fmt.Errorf("archiving %s: %w", localPath, err)
	}

	key := path.Join(a.prefix, filepath.Base(localPath))
	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(localPath))]
	if !ok {
		contentType = "application/octet-stream"
	}

	out, err := a.store.Upload(ctx, port.UploadInput{
		Bucket:      a.bucket,
		Key:         key,
		Body:        f,
		ContentType: contentType,
		Size:        info.Size(),
	})
	_ = f.Close()
	if err != nil {
		return "", fmt.Errorf("archiving %s: %w", localPath, err)
	}

	// The document counts as relocated only once it is gone from the inbound
	// directory, so a failed removal withdraws the uploaded copy.
	if err := os.Remove(localPath); err != nil {
		if derr := a.store.Delete(ctx, a.bucket, key); derr != nil {
			a.log.Warn("removing uploaded copy failed",
				zap.String("bucket", a.bucket), zap.String("key", key), zap.Error(derr))
		}
		return "", fmt.Errorf("archiving %s: removing source: %w", localPath, err)
	}

	location := out.Location
	if location == "" {
		location = fmt.Sprintf("s3://%s/%s", a.bucket, key)
	}
	return location, nil
}
