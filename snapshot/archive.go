package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/plasmakit/stdnames/model"
)

// Archive framing:
//
//	magic (4) | version (1) | codec name length (1) | codec name |
//	payload length (8, BE) | payload | CRC32-IEEE of payload (4, BE)
//
// The payload is the codec-compressed YAML document of the manifest and
// entries. Storing the codec name in the header keeps archives
// self-describing; readers never guess the compression.

var archiveMagic = [4]byte{'S', 'N', 'A', 'R'}

const archiveVersion = 1

// Compressor compresses archive payloads. Implementations must be safe
// for concurrent use.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// CompressorByName returns a built-in compressor by its stable name.
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "none":
		return nopCompressor{}, true
	case "zstd":
		return zstdCompressor{}, true
	case "lz4":
		return lz4Compressor{}, true
	default:
		return nil, false
	}
}

type nopCompressor struct{}

func (nopCompressor) Name() string                            { return "none" }
func (nopCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (nopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

type zstdCompressor struct{}

func (zstdCompressor) Name() string { return "zstd" }

func (zstdCompressor) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func (zstdCompressor) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

type lz4Compressor struct{}

func (lz4Compressor) Name() string { return "lz4" }

func (lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Compressor) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}

// archiveDoc is the YAML shape of the archive payload.
type archiveDoc struct {
	Manifest *Manifest      `yaml:"manifest"`
	Entries  []*model.Entry `yaml:"entries"`
}

// WriteArchive serializes the snapshot to w using the named compression
// codec.
func WriteArchive(w io.Writer, s *Snapshot, codecName string) error {
	comp, ok := CompressorByName(codecName)
	if !ok {
		return fmt.Errorf("snapshot: unknown archive codec %q", codecName)
	}

	doc := archiveDoc{Manifest: s.manifest}
	doc.Entries = make([]*model.Entry, 0, len(s.entries))
	for _, name := range s.names {
		doc.Entries = append(doc.Entries, s.entries[name])
	}
	plain, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("snapshot: encode archive: %w", err)
	}
	payload, err := comp.Compress(plain)
	if err != nil {
		return fmt.Errorf("snapshot: compress archive: %w", err)
	}

	header := make([]byte, 0, 16)
	header = append(header, archiveMagic[:]...)
	header = append(header, archiveVersion, byte(len(comp.Name())))
	header = append(header, comp.Name()...)
	header = binary.BigEndian.AppendUint64(header, uint64(len(payload)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write archive header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("snapshot: write archive payload: %w", err)
	}
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], crc32.ChecksumIEEE(payload))
	if _, err := w.Write(trailer[:]); err != nil {
		return fmt.Errorf("snapshot: write archive trailer: %w", err)
	}
	return nil
}

// ReadArchive reconstructs a snapshot from an archive stream, verifying
// the payload checksum.
func ReadArchive(r io.Reader) (*Snapshot, error) {
	var fixed [6]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read archive header: %w", err)
	}
	if !bytes.Equal(fixed[:4], archiveMagic[:]) {
		return nil, fmt.Errorf("snapshot: bad archive magic %q", fixed[:4])
	}
	if fixed[4] != archiveVersion {
		return nil, fmt.Errorf("snapshot: unsupported archive version %d", fixed[4])
	}
	nameBuf := make([]byte, fixed[5])
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("snapshot: read archive codec name: %w", err)
	}
	comp, ok := CompressorByName(string(nameBuf))
	if !ok {
		return nil, fmt.Errorf("snapshot: unknown archive codec %q", nameBuf)
	}
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read archive length: %w", err)
	}
	payload := make([]byte, binary.BigEndian.Uint64(lenBuf[:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("snapshot: read archive payload: %w", err)
	}
	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read archive trailer: %w", err)
	}
	if want, got := binary.BigEndian.Uint32(trailer[:]), crc32.ChecksumIEEE(payload); want != got {
		return nil, fmt.Errorf("snapshot: archive checksum mismatch: expected 0x%08x, got 0x%08x", want, got)
	}

	plain, err := comp.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decompress archive: %w", err)
	}
	var doc archiveDoc
	if err := yaml.Unmarshal(plain, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: decode archive: %w", err)
	}
	if doc.Manifest == nil {
		return nil, fmt.Errorf("snapshot: archive has no manifest")
	}
	entries := make(map[string]*model.Entry, len(doc.Entries))
	for _, e := range doc.Entries {
		entries[e.Name] = e
	}
	return newSnapshot(doc.Manifest, entries), nil
}
