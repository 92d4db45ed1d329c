package attachment

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// extensionByMimeType covers common types whose preferred extension is not
// the first one the mime package reports.
var extensionByMimeType = map[string]string{
	"image/jpeg":         ".jpg",
	"image/svg+xml":      ".svg",
	"audio/mpeg":         ".mp3",
	"video/quicktime":    ".mov",
	"text/plain":         ".txt",
	"text/markdown":      ".md",
	"application/gzip":   ".gz",
	"application/x-tar":  ".tar",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// DetectMimeType sniffs the mime type of raw content.
func DetectMimeType(data []byte) string {
	detected := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return "application/octet-stream"
}

// FilenameForMimeType generates a filename with an extension appropriate
// for the mime type.
func FilenameForMimeType(mimeType string, index int) string {
	ext, ok := extensionByMimeType[mimeType]
	if !ok {
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".bin"
		}
	}
	base := "attachment"
	if i := strings.Index(mimeType, "/"); i > 0 {
		base = mimeType[:i]
	}
	return fmt.Sprintf("%s_%d%s", base, index, ext)
}
