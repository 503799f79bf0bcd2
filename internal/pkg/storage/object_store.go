// Package storage 归档用户上传的样本原文件
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/penwise/backend/config"
	"k8s.io/klog/v2"
)

// ObjectStore 对象存储
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}

// New 按配置创建对象存储
func New(cfg *config.Config) (ObjectStore, error) {
	sc := cfg.Storage
	switch sc.Type {
	case "minio":
		store, err := NewMinioStore(sc.Endpoint, sc.AccessKey, sc.SecretKey, sc.Bucket, sc.UseSSL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "", "local":
		store, err := NewLocalStore(sc.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", sc.Type)
	}
}

// SampleKey 生成样本原文件的对象 key：<userId>/<sampleId>/<文件名>
func SampleKey(userID, sampleID, filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return path.Join(sanitizeSegment(userID), sampleID, name)
}

func sanitizeSegment(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(s))
	if s == "" {
		return "anonymous"
	}
	return s
}

// MinioStore MinIO/S3 兼容存储
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore 连接 MinIO 并确保 bucket 存在
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		klog.V(6).Infof("[storage] 创建 bucket: %s", bucket)
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// Put 上传对象
func (m *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Delete 删除对象
func (m *MinioStore) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// LocalStore 本地目录存储，key 映射为相对路径
type LocalStore struct {
	root string
}

// NewLocalStore 创建本地存储并确保根目录存在
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		root = "./data/samples"
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put 写入文件
func (s *LocalStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("put object: %w", err)
	}
	return f.Close()
}

// Delete 删除文件，不存在时视为成功
func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
