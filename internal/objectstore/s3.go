// s3.go — реализация Store поверх aws-sdk-go-v2 (S3-совместимые хранилища:
// AWS S3, MinIO, Ceph RGW).
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config — параметры подключения к S3-совместимому хранилищу.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// UsePathStyle нужен для MinIO и прочих self-hosted хранилищ
	UsePathStyle bool
}

// s3Store — реализация Store через клиент AWS SDK.
type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store создаёт хранилище с подключением по статическим ключам.
func NewS3Store(cfg S3Config) Store {
	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: cfg.UsePathStyle,
	})
	return &s3Store{client: client, bucket: cfg.Bucket}
}

// Put загружает объект с canned ACL по признаку публичности.
func (s *s3Store) Put(ctx context.Context, key string, body []byte, contentType string, public bool) error {
	acl := types.ObjectCannedACLPrivate
	if public {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		ACL:         acl,
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки объекта %q: %w", key, err)
	}
	return nil
}

// Get возвращает содержимое объекта.
func (s *s3Store) Get(ctx context.Context, key string) (*GetResult, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения объекта %q: %w", key, err)
	}

	return &GetResult{
		Body:        out.Body,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

// Delete удаляет объект. S3 DeleteObject идемпотентен.
func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления объекта %q: %w", key, err)
	}
	return nil
}

// List возвращает одну страницу листинга бакета по префиксу.
func (s *s3Store) List(ctx context.Context, prefix, token string) (*ListPage, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("ошибка листинга бакета: %w", err)
	}

	page := &ListPage{
		NextToken:   aws.ToString(out.NextContinuationToken),
		IsTruncated: aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:  aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
		})
	}
	return page, nil
}

// Head возвращает метаданные объекта без тела.
func (s *s3Store) Head(ctx context.Context, key string) (string, int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return "", 0, ErrNotFound
		}
		return "", 0, fmt.Errorf("ошибка HEAD объекта %q: %w", key, err)
	}
	return aws.ToString(out.ContentType), aws.ToInt64(out.ContentLength), nil
}

// isNotFound определяет ошибки отсутствия ключа.
// HeadObject возвращает NotFound, GetObject — NoSuchKey.
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}
