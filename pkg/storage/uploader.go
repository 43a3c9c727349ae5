package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pionia/internal"
)

// Uploader stores multipart files in a Store and returns the value written to the file column.
type Uploader struct {
	store      Store
	prefix     string
	rules      []Rule
	fieldRules map[string][]Rule
	returnURL  bool
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithPrefix puts every key under prefix.
func WithPrefix(prefix string) UploaderOption {
	return func(u *Uploader) {
		u.prefix = sanitizeSegment(prefix)
	}
}

// WithRules validates every upload.
func WithRules(rules ...Rule) UploaderOption {
	return func(u *Uploader) {
		u.rules = append(u.rules, rules...)
	}
}

// WithFieldRules validates uploads of one form field only, after the shared rules.
func WithFieldRules(field string, rules ...Rule) UploaderOption {
	return func(u *Uploader) {
		field = strings.ToLower(field)
		u.fieldRules[field] = append(u.fieldRules[field], rules...)
	}
}

// WithURLResult stores the object URL in the column instead of its key.
func WithURLResult() UploaderOption {
	return func(u *Uploader) {
		u.returnURL = true
	}
}

// NewUploader creates an Uploader writing to store.
func NewUploader(store Store, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		store:      store,
		fieldRules: make(map[string][]Rule),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Handle validates and stores one uploaded file.
// Validation failures are client errors; everything else is a server error.
func (u *Uploader) Handle(ctx context.Context, fh *multipart.FileHeader, field string) (any, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	defer f.Close()

	file := File{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: DetectMIME(f),
		Size:        fh.Size,
	}

	if err := u.validate(file); err != nil {
		var verr *FileValidationError
		if errors.As(err, &verr) {
			return nil, internal.ErrClient(verr.Message, internal.WithCause(err))
		}
		return nil, err
	}

	key := u.key(field, extension(file.ContentType, fh.Filename))
	if err := u.store.Put(ctx, key, f, fh.Size, file.ContentType); err != nil {
		return nil, err
	}

	if !u.returnURL {
		return key, nil
	}
	return u.store.URL(ctx, key)
}

// Remove deletes a stored file, typically from a delete hook.
func (u *Uploader) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return u.store.Delete(ctx, key)
}

func (u *Uploader) validate(f File) error {
	for _, rule := range u.rules {
		if err := rule(f); err != nil {
			return err
		}
	}
	for _, rule := range u.fieldRules[strings.ToLower(f.Field)] {
		if err := rule(f); err != nil {
			return err
		}
	}
	return nil
}

// key builds {prefix}/{field}/{uuid}{ext}.
func (u *Uploader) key(field, ext string) string {
	parts := make([]string, 0, 3)
	if u.prefix != "" {
		parts = append(parts, u.prefix)
	}
	if s := sanitizeSegment(field); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, uuid.NewString()+ext)
	return path.Join(parts...)
}

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeSegment(s string) string {
	s = strings.Trim(s, " /\\")
	s = strings.ReplaceAll(s, "..", "")
	return unsafeSegment.ReplaceAllString(s, "_")
}
