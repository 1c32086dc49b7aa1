package slide

import (
	"bytes"
	"time"
)

const (
	ContentTypePDF = "application/pdf"

	// DefaultMaxBytes is the upload size limit when none is configured.
	DefaultMaxBytes int64 = 50 << 20
)

var pdfMagic = []byte("%PDF")

// File is one uploaded slide deck. The most recent upload is the current one.
type File struct {
	ID          int64     `json:"-"`
	Filename    string    `json:"filename"`
	Data        []byte    `json:"-"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"` // UTC
}

// Info describes the current slide deck without its bytes.
type Info struct {
	HasData     bool       `json:"hasData"`
	Filename    string     `json:"filename,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	FileSize    int64      `json:"fileSize,omitempty"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"` // nil without a deck
}

// IsPDF reports whether data starts with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}
