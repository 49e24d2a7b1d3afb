package helpers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UploadConfig struct {
	MaxSizeBytes     int64
	AllowedMimeTypes []string
	UploadBasePath   string
}

var DefaultImageUploadConfig = UploadConfig{
	MaxSizeBytes: 5 * 1024 * 1024, // 5MB
	AllowedMimeTypes: []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/webp",
	},
	UploadBasePath: "./uploads/",
}

// ImageUploader stores an uploaded event image and returns the URL clients
// should load it from.
type ImageUploader interface {
	Upload(c *gin.Context, fileHeader *multipart.FileHeader, uploadType string) (string, error)
	Remove(ctx context.Context, url string) error
}

// LocalUploader writes images under Config.UploadBasePath. The server serves
// that directory at /uploads.
type LocalUploader struct {
	Config    UploadConfig
	PublicURL string
}

func NewLocalUploader(basePath, publicURL string) *LocalUploader {
	config := DefaultImageUploadConfig
	config.UploadBasePath = basePath
	return &LocalUploader{Config: config, PublicURL: strings.TrimRight(publicURL, "/")}
}

func (u *LocalUploader) Upload(c *gin.Context, fileHeader *multipart.FileHeader, uploadType string) (string, error) {
	if _, err := validateUpload(fileHeader, u.Config); err != nil {
		return "", err
	}

	uploadPath := filepath.Join(u.Config.UploadBasePath, uploadType)
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		return "", err
	}

	filename := uploadFilename(fileHeader)
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(uploadPath, filename)); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/uploads/%s/%s", u.PublicURL, uploadType, filename), nil
}

func (u *LocalUploader) Remove(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, u.PublicURL+"/uploads/")
	if !ok {
		return fmt.Errorf("%q is not a local upload", url)
	}
	return DeleteFile(filepath.Join(u.Config.UploadBasePath, filepath.FromSlash(rel)))
}

func DeleteFile(filePath string) error {
	return os.Remove(filePath)
}

// validateUpload checks size and sniffed content type, returning the latter.
func validateUpload(fileHeader *multipart.FileHeader, config UploadConfig) (string, error) {
	if fileHeader.Size > config.MaxSizeBytes {
		return "", fmt.Errorf("file size exceeds maximum limit of %d MB", config.MaxSizeBytes/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil {
		return "", err
	}
	mimeType := http.DetectContentType(buffer[:n])

	for _, allowedType := range config.AllowedMimeTypes {
		if mimeType == allowedType {
			return mimeType, nil
		}
	}
	return "", fmt.Errorf("invalid file type. Allowed types: %v", config.AllowedMimeTypes)
}

func uploadFilename(fileHeader *multipart.FileHeader) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
}
