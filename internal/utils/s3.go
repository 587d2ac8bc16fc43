package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

var (
	S3Session       *session.Session
	S3Bucket        string
	S3Region        string
	UseLocalStorage bool = true // true = local uploads dir, false = S3
)

func InitS3(bucket, region string) error {
	S3Bucket = bucket
	S3Region = region

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return err
	}

	S3Session = sess
	UseLocalStorage = false
	return nil
}

func uploadToS3(file *multipart.FileHeader) (string, error) {
	if S3Session == nil {
		return "", fmt.Errorf("S3 not initialized")
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	key := fmt.Sprintf("profiles/%s/%s%s",
		time.Now().Format("2006/01"),
		uuid.New().String(),
		ext,
	)

	svc := s3.New(S3Session)

	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(S3Bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", S3Bucket, S3Region, key), nil
}

func deleteFromS3(url string) error {
	if S3Session == nil {
		return fmt.Errorf("S3 not initialized")
	}

	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", S3Bucket, S3Region)
	key := strings.TrimPrefix(url, prefix)
	if key == url {
		return fmt.Errorf("unrecognized S3 URL: %s", url)
	}

	svc := s3.New(S3Session)
	_, err := svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(S3Bucket),
		Key:    aws.String(key),
	})
	return err
}

func GetStorageMode() string {
	if UseLocalStorage {
		return "local"
	}
	return "s3"
}

func SetStorageMode(useLocal bool) {
	UseLocalStorage = useLocal
}
