// internal/domain/upload/service.go
package upload

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/zodak/storefront-api/internal/config"
	"gorm.io/gorm"
)

// Service handles product image uploads on the local filesystem
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new upload service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// UploadRequest represents an image upload request
type UploadRequest struct {
	File       multipart.File
	Header     *multipart.FileHeader
	UploadedBy uint
}

// ListRequest represents an admin media list request
type ListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// ListResponse is a page of uploaded files
type ListResponse struct {
	Files []UploadedFile `json:"files"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Upload validates and stores a single image, writes a thumbnail and
// records the file. Filenames are the upload timestamp in milliseconds
// plus the original name with spaces replaced by underscores.
func (s *Service) Upload(req *UploadRequest) (*UploadedFile, error) {
	if err := s.validate(req.Header); err != nil {
		return nil, err
	}

	filename := uniqueFilename(req.Header.Filename, time.Now())
	if err := os.MkdirAll(s.config.Upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(s.config.Upload.Dir, filename)
	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, req.File); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	// Thumbnail generation is best effort. The original image is still
	// usable without one.
	thumbnailURL := ""
	if thumbName, err := s.writeThumbnail(fullPath, filename); err != nil {
		s.logger.WithError(err).WithField("filename", filename).Warn("Failed to generate thumbnail")
	} else {
		thumbnailURL = s.fileURL(thumbName)
	}

	uploadedFile := UploadedFile{
		OriginalName: req.Header.Filename,
		Filename:     filename,
		URL:          s.fileURL(filename),
		ThumbnailURL: thumbnailURL,
		MimeType:     mimeTypeFor(req.Header.Filename),
		Size:         req.Header.Size,
		UploadedBy:   req.UploadedBy,
	}
	if err := s.db.Create(&uploadedFile).Error; err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file info: %w", err)
	}

	return &uploadedFile, nil
}

// List returns uploaded files for the admin media library, newest first.
func (s *Service) List(req *ListRequest) (*ListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.Model(&UploadedFile{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	var files []UploadedFile
	err := s.db.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve files: %w", err)
	}

	return &ListResponse{Files: files, Total: total, Page: page, Limit: limit}, nil
}

// Delete removes a file record and its blobs from disk.
func (s *Service) Delete(fileID uint) error {
	var uploadedFile UploadedFile
	if err := s.db.First(&uploadedFile, fileID).Error; err != nil {
		return fmt.Errorf("file not found")
	}

	fullPath := filepath.Join(s.config.Upload.Dir, uploadedFile.Filename)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if uploadedFile.ThumbnailURL != "" {
		os.Remove(filepath.Join(s.config.Upload.Dir, path.Base(uploadedFile.ThumbnailURL)))
	}

	if err := s.db.Delete(&uploadedFile).Error; err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}

func (s *Service) validate(header *multipart.FileHeader) error {
	if header.Size > s.config.Upload.MaxSize {
		return fmt.Errorf("file exceeds maximum size of %d bytes", s.config.Upload.MaxSize)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	for _, allowed := range s.config.Upload.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("file type .%s is not allowed", ext)
}

func (s *Service) writeThumbnail(fullPath, filename string) (string, error) {
	img, err := imaging.Open(fullPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, s.config.Upload.ThumbnailWidth, s.config.Upload.ThumbnailHeight, imaging.Lanczos)
	thumbName := "thumb_" + filename
	if err := imaging.Save(thumb, filepath.Join(s.config.Upload.Dir, thumbName)); err != nil {
		return "", err
	}
	return thumbName, nil
}

func (s *Service) fileURL(filename string) string {
	return strings.TrimSuffix(s.config.Upload.BaseURL, "/") + "/" + filename
}

func uniqueFilename(original string, at time.Time) string {
	safe := strings.ReplaceAll(original, " ", "_")
	return fmt.Sprintf("%d-%s", at.UnixMilli(), safe)
}

func mimeTypeFor(filename string) string {
	if mt := mime.TypeByExtension(filepath.Ext(filename)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
