// Package blobstore abstracts storage of snapshot blobs.
//
// Snapshots are immutable once written: a Put either fully replaces the
// named blob or fails. Backends for the local file system and in-memory
// testing live here; S3 and MinIO backends live in subpackages so their
// SDKs stay out of the core dependency graph.
package blobstore
