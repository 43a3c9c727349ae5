// Package storage stores uploaded files in S3-compatible object storage.
//
// The Uploader plugs into the generic CRUD engine as its upload handler: every
// file column of a create or update request is validated, stored under a
// random key, and replaced in the written row by the key (or URL).
//
//	store, err := storage.New(cfg)
//	if err != nil {
//		return err
//	}
//
//	uploads := storage.NewUploader(store,
//		storage.WithPrefix("articles"),
//		storage.WithRules(storage.MaxSize(5<<20), storage.ImageOnly()),
//	)
//
//	svc := generics.New(generics.Config{
//		Table:       "article",
//		FileColumns: []string{"cover"},
//	}, exec, generics.WithUploadHandler(uploads))
//
// Validation failures surface to clients as client errors carrying the
// validation message; storage failures are server errors.
package storage
