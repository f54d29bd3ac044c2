package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const publicURLPrefix = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// UploadPhoto writes a publicly readable object under
// grievances/<grievanceID>/ and returns its URL.
func (c *CloudStorageClient) UploadPhoto(ctx context.Context, photo io.Reader, contentType, grievanceID string) (string, error) {
	filename := fmt.Sprintf("grievances/%s/%s%s", grievanceID, uuid.New().String(), extensionFor(contentType))

	obj := c.client.Bucket(c.bucketName).Object(filename)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(wc, photo); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy photo to GCS: %v", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to set ACL: %v", err)
	}

	return publicURLPrefix + c.bucketName + "/" + filename, nil
}

func (c *CloudStorageClient) DeletePhoto(ctx context.Context, photoURL string) error {
	objectName, err := c.objectName(photoURL)
	if err != nil {
		return err
	}

	if err := c.client.Bucket(c.bucketName).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete photo: %v", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

func (c *CloudStorageClient) objectName(photoURL string) (string, error) {
	if !strings.HasPrefix(photoURL, publicURLPrefix) {
		return "", fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(strings.TrimPrefix(photoURL, publicURLPrefix), "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return "", fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}
	return parts[1], nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
