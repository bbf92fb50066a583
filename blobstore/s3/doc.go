// Package s3 provides an Amazon S3 implementation of blobstore.Store for
// publishing catalog snapshot archives.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("stdnames/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	pub := blobstore.NewPublisher(store)
//	name, err := pub.Publish(ctx, snap)
//
// # Features
//
//   - Multipart uploads for large archives
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
