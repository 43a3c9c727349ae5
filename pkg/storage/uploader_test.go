package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pionia/internal"
	"github.com/dmitrymomot/pionia/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type object struct {
	contentType string
	data        []byte
}

type memStore struct {
	mu      sync.Mutex
	objects map[string]object
	putErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]object)}
}

func (s *memStore) Put(_ context.Context, key string, body io.ReadSeeker, _ int64, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{contentType: contentType, data: data}
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStore) URL(_ context.Context, key string) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (s *memStore) get(key string) (object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	return o, ok
}

// fileHeader builds a real multipart.FileHeader the way the request parser does.
func fileHeader(t *testing.T, field, filename string, data []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.Len(t, form.File[field], 1)
	return form.File[field][0]
}

func TestUploader_Handle(t *testing.T) {
	t.Parallel()

	t.Run("stores file and returns key", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		u := storage.NewUploader(store, storage.WithPrefix("articles"))

		v, err := u.Handle(context.Background(), fileHeader(t, "cover", "photo.png", pngHeader), "cover")
		require.NoError(t, err)

		key, ok := v.(string)
		require.True(t, ok)
		require.True(t, strings.HasPrefix(key, "articles/cover/"), key)
		require.True(t, strings.HasSuffix(key, ".png"), key)

		obj, ok := store.get(key)
		require.True(t, ok)
		require.Equal(t, "image/png", obj.contentType)
		require.Equal(t, pngHeader, obj.data)
	})

	t.Run("returns URL when configured", func(t *testing.T) {
		t.Parallel()

		u := storage.NewUploader(newMemStore(), storage.WithURLResult())

		v, err := u.Handle(context.Background(), fileHeader(t, "cover", "photo.png", pngHeader), "cover")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(v.(string), "https://cdn.test/cover/"))
	})

	t.Run("falls back to filename extension", func(t *testing.T) {
		t.Parallel()

		u := storage.NewUploader(newMemStore())

		v, err := u.Handle(context.Background(), fileHeader(t, "doc", "notes.MD", []byte("\x00\x01binary")), "doc")
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(v.(string), ".md"), v)
	})

	t.Run("validation failure is a client error", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		u := storage.NewUploader(store, storage.WithRules(storage.ImageOnly()))

		_, err := u.Handle(context.Background(), fileHeader(t, "cover", "a.txt", []byte("plain text")), "cover")
		require.Error(t, err)
		require.True(t, internal.IsError(err, internal.KindClient))

		var verr *storage.FileValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, storage.CodeInvalidMIME, verr.Code)
		require.Empty(t, store.objects)
	})

	t.Run("field rules apply to their field only", func(t *testing.T) {
		t.Parallel()

		u := storage.NewUploader(newMemStore(), storage.WithFieldRules("Avatar", storage.MaxSize(4)))

		_, err := u.Handle(context.Background(), fileHeader(t, "cover", "a.png", pngHeader), "cover")
		require.NoError(t, err)

		_, err = u.Handle(context.Background(), fileHeader(t, "avatar", "a.png", pngHeader), "avatar")
		require.True(t, internal.IsError(err, internal.KindClient))
	})

	t.Run("store failure is returned as is", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		store.putErr = storage.ErrUploadFailed
		u := storage.NewUploader(store)

		_, err := u.Handle(context.Background(), fileHeader(t, "cover", "a.png", pngHeader), "cover")
		require.ErrorIs(t, err, storage.ErrUploadFailed)
		require.Nil(t, internal.AsError(err))
	})
}

func TestUploader_Remove(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	u := storage.NewUploader(store)

	v, err := u.Handle(context.Background(), fileHeader(t, "cover", "a.png", pngHeader), "cover")
	require.NoError(t, err)

	require.NoError(t, u.Remove(context.Background(), v.(string)))
	_, ok := store.get(v.(string))
	require.False(t, ok)

	require.NoError(t, u.Remove(context.Background(), ""))
}

func TestRules(t *testing.T) {
	t.Parallel()

	file := storage.File{Field: "cover", ContentType: "image/png", Size: 2 << 20}

	err := storage.MaxSize(1 << 20)(file)
	var verr *storage.FileValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, storage.CodeFileTooLarge, verr.Code)
	require.Equal(t, "File cover exceeds 1MB", verr.Message)

	require.NoError(t, storage.MaxSize(2<<20)(file))
	require.NoError(t, storage.AllowedTypes("image/*")(file))
	require.Error(t, storage.AllowedTypes("video/*", "application/pdf")(file))
	require.Error(t, storage.NotEmpty()(storage.File{Field: "cover"}))
}

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader(pngHeader)
	require.Equal(t, "image/png", storage.DetectMIME(r))

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, pngHeader, rest, "reader is rewound")

	require.Equal(t, "text/plain", storage.DetectMIME(strings.NewReader("hello")))
	require.Equal(t, storage.MIMEOctetStream, storage.DetectMIME(bytes.NewReader(nil)))
	require.Equal(t, ".jpg", storage.ExtFromMIME("image/jpeg; charset=binary"))
}
