// Package blobstore abstracts object storage for published snapshot
// archives.
//
// A Store holds named immutable blobs. The local and in-memory
// implementations live here; the minio and s3 subpackages provide remote
// backends for S3-compatible object stores. The Publisher layers snapshot
// publishing on top of any Store: it uploads an archive under a
// content-derived name, then flips a CURRENT pointer object to it, so
// readers always resolve a complete archive.
//
// # Custom Implementations
//
// Implement the Store interface to support other backends:
//
//	type Store interface {
//	    Put(ctx, name, data) error          // Atomic write
//	    Open(ctx, name) (io.ReadCloser, error)
//	    List(ctx, prefix) ([]string, error)
//	    Delete(ctx, name) error
//	}
package blobstore
