package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/storage"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type FileService interface {
	// ArchiveImport stores an uploaded summary workbook and returns its path.
	ArchiveImport(ctx context.Context, corpID string, file io.Reader, filename string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// ArchiveImport implements FileService.
func (s *fileServiceImpl) ArchiveImport(ctx context.Context, corpID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" {
		return "", fmt.Errorf("invalid file type: only xlsx allowed")
	}

	// imports/{corp}/{yyyy-mm}/{uuid}.xlsx
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	path := filepath.Join("imports", sanitizeSegment(corpID), s.now().UTC().Format("2006-01"), newFilename)

	uploadedPath, err := s.storage.Upload(ctx, file, path, xlsxContentType)
	if err != nil {
		return "", fmt.Errorf("failed to archive import file: %w", err)
	}

	return uploadedPath, nil
}

func sanitizeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "_"
	}
	return s
}
