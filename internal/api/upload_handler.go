package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"

	"fitreport/internal/api/middleware"
	"fitreport/internal/storage"
)

// MaxUploadBytes caps an attachment at 50MB.
const MaxUploadBytes = 50 << 20

// BlobStore stores uploaded files. *storage.Client implements it.
type BlobStore interface {
	UploadFile(ctx context.Context, objectPath string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error)
}

// errInfected is returned by a scanner that found malware.
var errInfected = errors.New("infected file")

// VirusScanner inspects an upload before it is stored.
type VirusScanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner scans through a clamd daemon.
type ClamdScanner struct {
	Addr string
}

// Scan streams r to clamd and fails with errInfected on any non-OK verdict.
func (s ClamdScanner) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := clamd.NewClamd(s.Addr).ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("clamd scan: %w", err)
	}
	for result := range results {
		if result.Status != clamd.RES_OK {
			return fmt.Errorf("%w: %s", errInfected, result.Description)
		}
	}
	return nil
}

// UploadHandler stores document attachments.
type UploadHandler struct {
	Storage BlobStore
	Scanner VirusScanner
}

// NewUploadHandler returns an UploadHandler. scanner may be nil.
func NewUploadHandler(blobs BlobStore, scanner VirusScanner) *UploadHandler {
	return &UploadHandler{Storage: blobs, Scanner: scanner}
}

// Upload stores the multipart "file" at "filePath". Existing paths are never overwritten.
func (h *UploadHandler) Upload(c *gin.Context) {
	logger := middleware.LoggerFromContext(c)

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, msgUploadMissingFile)
		return
	}
	objectPath := strings.TrimSpace(c.PostForm("filePath"))
	if objectPath == "" {
		BadRequest(c, msgUploadMissingPath)
		return
	}
	if file.Size > MaxUploadBytes {
		BadRequest(c, "파일 크기는 50MB를 초과할 수 없습니다")
		return
	}
	logger = logger.With(slog.String("path", objectPath), slog.Int64("size", file.Size))

	if h.Scanner != nil {
		reader, err := file.Open()
		if err != nil {
			Internal(c, msgUploadFailedPrefix+err.Error())
			return
		}
		err = h.Scanner.Scan(reader)
		reader.Close()
		if errors.Is(err, errInfected) {
			logger.Warn("upload rejected by virus scan", slog.Any("error", err))
			BadRequest(c, msgUploadInfected)
			return
		}
		if err != nil {
			logger.Error("virus scan failed", slog.Any("error", err))
			Internal(c, msgUploadFailedPrefix+err.Error())
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, msgUploadFailedPrefix+err.Error())
		return
	}
	defer reader.Close()

	contentType := file.Header.Get("Content-Type")
	result, err := h.Storage.UploadFile(c.Request.Context(), objectPath, reader, file.Size, contentType)
	if storage.IsObjectExists(err) {
		logger.Warn("upload refused: path already taken")
		Internal(c, msgUploadFailedPrefix+err.Error())
		return
	}
	if err != nil {
		logger.Error("upload failed", slog.Any("error", err))
		Internal(c, msgUploadFailedPrefix+err.Error())
		return
	}

	logger.Info("file uploaded", slog.String("stored_path", result.Path))
	c.JSON(http.StatusOK, gin.H{"message": msgUploadSuccess, "path": objectPath})
}
