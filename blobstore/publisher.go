package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/time/rate"

	"github.com/plasmakit/stdnames/snapshot"
)

const (
	// CurrentPointer is the blob naming the latest published archive.
	CurrentPointer = "CURRENT"
	// archivePrefix prefixes every published archive blob.
	archivePrefix = "archives/"
)

// Publisher uploads snapshot archives to a Store. Each archive is named
// after its aggregate hash, so publishing is idempotent and readers can
// cache archives forever; the CURRENT pointer is flipped last.
type Publisher struct {
	store   Store
	codec   string
	limiter *rate.Limiter
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithArchiveCodec selects the archive compression codec (default zstd).
func WithArchiveCodec(name string) PublisherOption {
	return func(p *Publisher) { p.codec = name }
}

// WithUploadRateLimit caps upload throughput in bytes per second.
func WithUploadRateLimit(bytesPerSecond int) PublisherOption {
	return func(p *Publisher) {
		p.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)
	}
}

// NewPublisher creates a Publisher over the given store.
func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, codec: "zstd"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ArchiveName returns the blob name a snapshot publishes under.
func ArchiveName(s *snapshot.Snapshot) string {
	return archivePrefix + "catalog-" + s.AggregateHash()[:16] + ".snar"
}

// Publish uploads the snapshot's archive and flips the CURRENT pointer to
// it. It returns the archive blob name.
func (p *Publisher) Publish(ctx context.Context, s *snapshot.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := snapshot.WriteArchive(&buf, s, p.codec); err != nil {
		return "", err
	}
	name := ArchiveName(s)
	if err := p.throttle(ctx, buf.Len()); err != nil {
		return "", err
	}
	if err := p.store.Put(ctx, name, buf.Bytes()); err != nil {
		return "", fmt.Errorf("blobstore: publish %s: %w", name, err)
	}
	if err := p.store.Put(ctx, CurrentPointer, []byte(name)); err != nil {
		return "", fmt.Errorf("blobstore: update %s: %w", CurrentPointer, err)
	}
	return name, nil
}

// Fetch downloads and decodes the archive with the given blob name.
func (p *Publisher) Fetch(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	rc, err := p.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("blobstore: fetch %s: %w", name, err)
	}
	defer rc.Close()
	return snapshot.ReadArchive(rc)
}

// Latest resolves the CURRENT pointer and fetches the archive it names.
func (p *Publisher) Latest(ctx context.Context) (*snapshot.Snapshot, error) {
	rc, err := p.store.Open(ctx, CurrentPointer)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve %s: %w", CurrentPointer, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(string(data))
	if name == "" {
		return nil, fmt.Errorf("blobstore: %s pointer is empty", CurrentPointer)
	}
	return p.Fetch(ctx, name)
}

// List returns the names of every published archive, sorted.
func (p *Publisher) List(ctx context.Context) ([]string, error) {
	return p.store.List(ctx, archivePrefix)
}

// throttle waits for n bytes of upload budget, in burst-sized slices.
func (p *Publisher) throttle(ctx context.Context, n int) error {
	if p.limiter == nil {
		return nil
	}
	burst := p.limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := p.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
