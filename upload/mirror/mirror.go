package mirror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/bitrise-io/go-utils/retry"
	"github.com/bitrise-io/go-utils/v2/log"
)

const numUploadRetries = 3

// Params ...
type Params struct {
	FilePath        string
	Bucket          string
	KeyPrefix       string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type s3MirrorService struct {
	client   *s3.Client
	bucket   string
	filePath string
	fileSize int64
}

// Upload copies the file into the given S3 bucket and returns the s3://
// location of the copy. Mirroring is an extra safety net on top of the
// GitHub upload, callers are expected to treat failures as non-fatal.
func Upload(ctx context.Context, params Params, logger log.Logger) (string, error) {
	if params.Bucket == "" {
		return "", fmt.Errorf("Bucket must not be empty")
	}
	if params.FilePath == "" {
		return "", fmt.Errorf("FilePath must not be empty")
	}

	info, err := os.Stat(params.FilePath)
	if err != nil {
		return "", fmt.Errorf("stat mirror source: %w", err)
	}

	cfg, err := loadAWSCredentials(
		ctx,
		params.Region,
		params.AccessKeyID,
		params.SecretAccessKey,
		logger,
	)
	if err != nil {
		return "", fmt.Errorf("load aws credentials: %w", err)
	}

	client := s3.NewFromConfig(*cfg)
	service := &s3MirrorService{
		client:   client,
		bucket:   params.Bucket,
		filePath: params.FilePath,
		fileSize: info.Size(),
	}

	key := mirrorKey(params.KeyPrefix, params.FilePath)
	exists, err := service.objectExistsWithRetry(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check mirror object: %w", err)
	}
	if exists {
		logger.Debugf("Object %s already exists in the bucket, it will be overwritten", key)
	}

	logger.Debugf("Uploading mirror copy to s3://%s/%s", params.Bucket, key)
	if err := service.putObjectWithRetry(ctx, key); err != nil {
		return "", fmt.Errorf("upload mirror copy: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", params.Bucket, key), nil
}

func mirrorKey(keyPrefix string, filePath string) string {
	name := filepath.Base(filePath)
	if keyPrefix == "" {
		return name
	}
	return path.Join(keyPrefix, name)
}

func contentTypeForFile(filePath string) string {
	if strings.HasSuffix(filePath, ".zst") {
		return "application/zstd"
	}
	return "text/plain"
}

// objectExistsWithRetry reports whether the mirror key is already taken in
// the bucket. A NotFound response is the expected case, not an error.
func (service *s3MirrorService) objectExistsWithRetry(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := retry.Times(numUploadRetries).Wait(5 * time.Second).TryWithAbort(func(attempt uint) (error, bool) {
		_, err := service.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(service.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var apiError smithy.APIError
			if errors.As(err, &apiError) {
				switch apiError.(type) {
				case *types.NotFound:
					exists = false
					return nil, true
				default:
					return fmt.Errorf("head mirror object: %w", err), false
				}
			}
			return fmt.Errorf("head mirror object: %w", err), false
		}

		exists = true
		return nil, true
	})

	return exists, err
}

func (service *s3MirrorService) putObjectWithRetry(ctx context.Context, key string) error {
	return retry.Times(numUploadRetries).Wait(5 * time.Second).TryWithAbort(func(attempt uint) (error, bool) {
		file, err := os.Open(service.filePath)
		if err != nil {
			return fmt.Errorf("open mirror source: %w", err), true
		}
		defer file.Close() //nolint:errcheck
		var partMB int64 = 10

		uploader := manager.NewUploader(service.client, func(u *manager.Uploader) {
			u.PartSize = partMB * 1024 * 1024
		})

		_, err = uploader.Upload(ctx, &s3.PutObjectInput{
			Body:              file,
			Bucket:            aws.String(service.bucket),
			Key:               aws.String(key),
			ContentType:       aws.String(contentTypeForFile(service.filePath)),
			ContentLength:     aws.Int64(service.fileSize),
			ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
		})
		if err != nil {
			return fmt.Errorf("upload mirror copy: %w", err), false
		}

		return nil, true
	})
}

func loadAWSCredentials(
	ctx context.Context,
	region string,
	accessKeyID string,
	secretKey string,
	logger log.Logger,
) (*aws.Config, error) {
	if region == "" {
		return nil, fmt.Errorf("region must not be empty")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if accessKeyID != "" && secretKey != "" {
		logger.Debugf("static aws credentials provided, using them instead of the default chain...")
		opts = append(opts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config, %v", err)
	}

	return &cfg, nil
}
