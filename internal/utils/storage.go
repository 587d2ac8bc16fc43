package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	UploadBasePath = "./uploads"
	ProfilesPath   = "./uploads/profiles"
)

func InitLocalStorage() error {
	for _, dir := range []string{UploadBasePath, ProfilesPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

// UploadProfileImage stores a user's profile photo and returns its public path.
func UploadProfileImage(file *multipart.FileHeader) (string, error) {
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return "", fmt.Errorf("profile photo must be an image")
	}
	if UseLocalStorage {
		return uploadToLocal(file)
	}
	return uploadToS3(file)
}

func uploadToLocal(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s-%s%s",
		time.Now().Format("20060102-150405"),
		uuid.New().String()[:8],
		ext,
	)

	fullPath := filepath.Join(ProfilesPath, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %v", err)
	}

	relativePath := strings.TrimPrefix(fullPath, "./")
	return "/" + relativePath, nil
}

// DeleteProfileImage removes a stored photo; callers treat errors as non-fatal
// when the owning user record is already gone.
func DeleteProfileImage(path string) error {
	if path == "" {
		return nil
	}
	if UseLocalStorage {
		return deleteFromLocal(path)
	}
	return deleteFromS3(path)
}

func deleteFromLocal(filePath string) error {
	filePath = strings.TrimPrefix(filePath, "/")

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("invalid file path: %v", err)
	}

	baseAbs, err := filepath.Abs(UploadBasePath)
	if err != nil {
		return fmt.Errorf("invalid base path: %v", err)
	}
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}
	// A bare prefix check would admit siblings like "uploads-evil", so the
	// separator is part of the comparison.
	if !strings.HasPrefix(absPath, baseAbs+string(os.PathSeparator)) {
		return fmt.Errorf("file path outside uploads directory")
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", filePath)
	}

	return os.Remove(filePath)
}
