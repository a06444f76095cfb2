package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// IsNoSuchKey reports whether err means the object is missing (S3/MinIO NoSuchKey or NotFound).
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}

	var minioErr minio.ErrorResponse
	if errors.As(err, &minioErr) {
		switch strings.ToLower(strings.TrimSpace(minioErr.Code)) {
		case "nosuchkey", "notfound":
			return true
		}
		if minioErr.StatusCode == 404 && minioErr.Code == "" {
			return true
		}
	}

	// 게이트웨이에 따라 문자열로만 감싸서 돌려주는 경우가 있다.
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "nosuchkey") ||
		strings.Contains(lower, "specified key does not exist")
}

// IsObjectExists reports whether err came from an upload refused because the path is taken.
func IsObjectExists(err error) bool {
	return errors.Is(err, ErrObjectExists)
}
