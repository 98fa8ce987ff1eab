package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tanq16/splitfetch/internal/utils"
)

const presignExpiry = 6 * time.Hour

func IsS3URL(link string) bool {
	return strings.HasPrefix(link, "s3://")
}

// ResolveURL turns s3://bucket/key into a presigned HTTPS GET URL so the
// object can be fetched with plain range requests. Other links pass through.
func ResolveURL(ctx context.Context, link, profile string) (string, error) {
	if !IsS3URL(link) {
		return link, nil
	}
	log := utils.GetLogger("s3")
	bucket, key, err := parseS3URL(link)
	if err != nil {
		return "", err
	}
	presigner, err := getPresignClient(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("error creating S3 client: %w", err)
	}
	presigned, err := presignGetObject(ctx, presigner, bucket, key, presignExpiry)
	if err != nil {
		return "", fmt.Errorf("error presigning s3://%s/%s: %w", bucket, key, err)
	}
	log.Debug().Str("bucket", bucket).Str("key", key).Dur("expiry", presignExpiry).Msg("Resolved S3 object to presigned URL")
	return presigned, nil
}

func parseS3URL(link string) (string, string, error) {
	trimmed := strings.TrimPrefix(link, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL %q: missing bucket", link)
	}
	if len(parts) < 2 || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return "", "", fmt.Errorf("invalid S3 URL %q: must name a single object", link)
	}
	return parts[0], parts[1], nil
}
