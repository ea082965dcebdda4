// Package snapshot stores rendered documents.
//
// A snapshot is the serialized HTML of a document at one point in time,
// written under a time-ordered key:
//
//	store, _ := snapshot.NewFileStore("snapshots")
//	key, err := snapshot.Capture(ctx, store, "demo/", doc)
//
// FileStore writes to a local directory; S3Store uploads to a bucket.
package snapshot
