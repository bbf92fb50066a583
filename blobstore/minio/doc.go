// Package minio provides a blobstore.Store implementation using the MinIO
// client, for publishing catalog snapshot archives.
//
// MinIO is a high-performance, S3-compatible object storage system. This
// package uses the official MinIO Go client library for compatibility with
// MinIO and other S3-compatible storage systems like Ceph, SeaweedFS, and
// Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "catalogs", "stdnames/")
//	pub := blobstore.NewPublisher(store)
//	name, err := pub.Publish(ctx, snap)
//
// # Features
//
//   - Works with any S3-compatible storage (Ceph, Garage, SeaweedFS)
//   - Air-gap friendly (no AWS dependencies required)
//   - Configurable prefix for multi-tenant isolation
package minio
