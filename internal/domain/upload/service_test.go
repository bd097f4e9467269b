// internal/domain/upload/service_test.go
package upload

import (
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zodak/storefront-api/internal/config"
)

func TestUniqueFilename(t *testing.T) {
	at := time.UnixMilli(1756600000000)

	assert.Equal(t, "1756600000000-hoodie.png", uniqueFilename("hoodie.png", at))
	assert.Equal(t, "1756600000000-front_view.jpg", uniqueFilename("front view.jpg", at))
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{}
	cfg.Upload.MaxSize = 1024
	cfg.Upload.AllowedExtensions = []string{"jpg", "png"}
	s := &Service{config: cfg}

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"allowed extension", "hoodie.png", 512, false},
		{"uppercase extension", "hoodie.PNG", 512, false},
		{"disallowed extension", "malware.exe", 512, true},
		{"no extension", "README", 512, true},
		{"too large", "hoodie.jpg", 2048, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.validate(&multipart.FileHeader{Filename: tt.filename, Size: tt.size})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
