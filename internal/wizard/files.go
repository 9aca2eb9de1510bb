package wizard

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"lagospaces/server/internal/models"
)

var documentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
}

// accepts reports whether a sniffed type may fill the given upload slot. Photos of IDs,
// faces and listings take any image; ownership proof takes pdf, doc, docx, jpg or png.
func accepts(kind models.DocumentKind, m *mimetype.MIME) bool {
	switch kind {
	case models.DocumentID, models.DocumentFace, models.DocumentImage:
		for mt := m; mt != nil; mt = mt.Parent() {
			if strings.HasPrefix(mt.String(), "image/") {
				return true
			}
		}
		return false
	case models.DocumentOwnership:
		for _, t := range documentTypes {
			if m.Is(t) {
				return true
			}
		}
		return false
	}
	return false
}

// SizeLabel renders a byte count in megabytes with two decimals
func SizeLabel(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}

// newFileHandle sniffs the content type and keeps the bytes for previews
func newFileHandle(kind models.DocumentKind, name string, data []byte, maxSize int64) (*models.FileHandle, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedFile)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %s", ErrFileTooLarge, SizeLabel(int64(len(data))), SizeLabel(maxSize))
	}

	m := mimetype.Detect(data)
	if !accepts(kind, m) {
		return nil, fmt.Errorf("%w: %s is not accepted for %s", ErrUnsupportedFile, m.String(), kind)
	}

	if name == "" {
		name = string(kind) + m.Extension()
	}
	return &models.FileHandle{
		Name:        name,
		Size:        int64(len(data)),
		SizeLabel:   SizeLabel(int64(len(data))),
		ContentType: m.String(),
		Data:        data,
	}, nil
}
