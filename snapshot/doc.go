// Package snapshot builds read-only, integrity-stamped views of a catalog.
//
// A snapshot pairs the loaded entries with a manifest recording a SHA-256
// hash, size and modification time per record, plus an aggregate hash over
// the sorted name:hash pairs. Verification replays the hashes against the
// store and reports every divergence: records changed on disk, records
// deleted behind the snapshot's back, untracked files and a tampered
// manifest.
//
// Snapshots also carry tag bitmaps for fast tag filtering, and can be
// written to a single-file archive with a named compression codec and a
// CRC32 trailer for transport.
package snapshot
