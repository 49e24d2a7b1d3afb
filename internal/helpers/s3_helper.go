package helpers

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/gin-gonic/gin"
)

// S3Uploader stores images in a bucket and returns their public object URL.
type S3Uploader struct {
	Client s3iface.S3API
	Bucket string
	Region string
	Config UploadConfig
}

func NewS3Uploader(sess *session.Session, bucket string) *S3Uploader {
	return &S3Uploader{
		Client: s3.New(sess),
		Bucket: bucket,
		Region: aws.StringValue(sess.Config.Region),
		Config: DefaultImageUploadConfig,
	}
}

func (u *S3Uploader) Upload(c *gin.Context, fileHeader *multipart.FileHeader, uploadType string) (string, error) {
	contentType, err := validateUpload(fileHeader, u.Config)
	if err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := uploadType + "/" + uploadFilename(fileHeader)
	_, err = u.Client.PutObjectWithContext(c.Request.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return u.objectURL(key), nil
}

func (u *S3Uploader) Remove(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, u.objectURL(""))
	if !ok {
		return fmt.Errorf("%q is not an object in bucket %s", url, u.Bucket)
	}

	_, err := u.Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (u *S3Uploader) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, key)
}
