package objectstore

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the upload limit")
	ErrExtension       = errors.New("file extension not allowed")
	ErrContentMismatch = errors.New("file content does not match extension")
	ErrMIMENotAllowed  = errors.New("file type not allowed")
)

// documentTypes lists, per allowed CV extension, the leading magic bytes and
// the detected MIME types accepted for it.
var documentTypes = map[string]struct {
	magic [][]byte
	mimes []string
}{
	".pdf": {
		magic: [][]byte{{0x25, 0x50, 0x44, 0x46}}, // %PDF
		mimes: []string{"application/pdf"},
	},
	".doc": {
		magic: [][]byte{{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE compound document
		mimes: []string{"application/msword", "application/x-ole-storage"},
	},
	".docx": {
		magic: [][]byte{{0x50, 0x4B, 0x03, 0x04}}, // zip
		mimes: []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
	},
	".txt": {
		mimes: []string{"text/plain"},
	},
}

// ValidatedFile is a CV that passed ValidateDocument
type ValidatedFile struct {
	Extension   string
	ContentType string
}

// ValidateDocument checks extension, size, magic bytes and detected MIME type of a CV upload
func ValidateDocument(filename string, data []byte, maxBytes int64) (*ValidatedFile, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := documentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrExtension, ext)
	}

	if len(kind.magic) > 0 && !hasAnyPrefix(data, kind.magic) {
		return nil, fmt.Errorf("%w: %s", ErrContentMismatch, ext)
	}

	detected := mimetype.Detect(data)
	for _, allowed := range kind.mimes {
		if detected.Is(allowed) {
			return &ValidatedFile{Extension: ext, ContentType: kind.mimes[0]}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMIMENotAllowed, detected.String())
}

// AllowedExtensions lists the accepted CV extensions for error messages
func AllowedExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".txt"}
}

func hasAnyPrefix(data []byte, prefixes [][]byte) bool {
	for _, p := range prefixes {
		if bytes.HasPrefix(data, p) {
			return true
		}
	}
	return false
}
