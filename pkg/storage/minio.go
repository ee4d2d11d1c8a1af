// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"study-assistant-go/internal/config"
	"study-assistant-go/pkg/log"
)

// MinioClient 是一个全局的 MinIO 客户端实例，未配置时为 nil。
var MinioClient *minio.Client

// BucketName 是归档原始文件使用的存储桶。
var BucketName string

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。Endpoint 为空时跳过。
func InitMinIO(cfg config.MinIOConfig) {
	if cfg.Endpoint == "" {
		log.Info("MinIO 未配置，上传的原始文件不会归档")
		return
	}
	var err error

	MinioClient, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatal("初始化 MinIO 客户端失败", err)
	}
	BucketName = cfg.BucketName

	log.Info("MinIO 客户端初始化成功")

	// 检查存储桶是否存在，如果不存在则创建
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	exists, err := MinioClient.BucketExists(ctx, BucketName)
	if err != nil {
		log.Fatal("检查 MinIO 存储桶失败", err)
	}

	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", BucketName)
		if err = MinioClient.MakeBucket(ctx, BucketName, minio.MakeBucketOptions{}); err != nil {
			log.Fatal("创建 MinIO 存储桶失败", err)
		}
		log.Infof("存储桶 '%s' 创建成功", BucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", BucketName)
	}
}

// ObjectStore 是原始文件归档的抽象，便于在测试中替换。
type ObjectStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewObjectStore 基于全局 MinIO 客户端创建 ObjectStore；未启用时返回 nil。
func NewObjectStore() ObjectStore {
	if MinioClient == nil {
		return nil
	}
	return &minioStore{client: MinioClient, bucket: BucketName}
}

func (s *minioStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("上传对象到 MinIO 失败: %w", err)
	}
	return nil
}

// PresignedURL generates a presigned URL for a given object.
func (s *minioStore) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		log.Errorf("Error generating presigned URL: %s", err)
		return "", err
	}
	return presignedURL.String(), nil
}

// DocumentObjectName 返回文档原始文件的对象路径。
func DocumentObjectName(documentID uint, filename string) string {
	return fmt.Sprintf("documents/%d/%s", documentID, filename)
}
