package storage

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MIMEOctetStream = "application/octet-stream"

	// http.DetectContentType looks at no more than 512 bytes.
	sniffLen = 512
)

var mimeExtensions = map[string]string{
	"image/jpeg":       ".jpg",
	"image/png":        ".png",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
	"image/bmp":        ".bmp",
	"image/x-icon":     ".ico",
	"image/svg+xml":    ".svg",
	"application/pdf":  ".pdf",
	"application/zip":  ".zip",
	"application/gzip": ".gz",
	"application/json": ".json",
	"text/plain":       ".txt",
	"text/csv":         ".csv",
	"text/html":        ".html",
	"video/mp4":        ".mp4",
	"video/webm":       ".webm",
	"audio/mpeg":       ".mp3",
	"audio/wave":       ".wav",
	"audio/ogg":        ".ogg",
}

// DetectMIME sniffs the content type from the first bytes of r and rewinds it.
func DetectMIME(r io.ReadSeeker) string {
	buf := make([]byte, sniffLen)
	n, _ := io.ReadFull(r, buf)
	_, _ = r.Seek(0, io.SeekStart)
	if n == 0 {
		return MIMEOctetStream
	}
	return normalizeMIME(http.DetectContentType(buf[:n]))
}

// ExtFromMIME returns the preferred extension for mimeType, or "" if unknown.
func ExtFromMIME(mimeType string) string {
	return mimeExtensions[normalizeMIME(mimeType)]
}

// extension picks the key extension: the detected type first, then the client filename.
func extension(mimeType, filename string) string {
	if ext := ExtFromMIME(mimeType); ext != "" {
		return ext
	}
	if ext := strings.ToLower(filepath.Ext(filename)); isSafeExt(ext) {
		return ext
	}
	return ".bin"
}

func isSafeExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 8 {
		return false
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME reports whether mimeType matches any pattern. "image/*" style wildcards are allowed.
func matchesMIME(mimeType string, patterns []string) bool {
	mimeType = normalizeMIME(mimeType)
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == mimeType {
			return true
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasSuffix(prefix, "/") && strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	return false
}
