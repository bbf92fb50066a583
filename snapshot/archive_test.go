package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_RoundTrip(t *testing.T) {
	st, entries := seedStore(t)
	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	for _, codec := range []string{"none", "zstd", "lz4"} {
		t.Run(codec, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteArchive(&buf, s, codec))

			got, err := ReadArchive(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, s.AggregateHash(), got.AggregateHash())
			assert.Equal(t, s.Names(), got.Names())
			assert.Equal(t, s.WithTags("equilibrium"), got.WithTags("equilibrium"))

			e, ok := got.Entry("electron_temperature")
			require.True(t, ok)
			assert.Equal(t, entries["electron_temperature"], e)
		})
	}
}

func TestArchive_UnknownCodec(t *testing.T) {
	st, entries := seedStore(t)
	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteArchive(&buf, s, "brotli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brotli")
}

func TestArchive_CorruptionDetected(t *testing.T) {
	st, entries := seedStore(t)
	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteArchive(&buf, s, "zstd"))
	data := buf.Bytes()

	// Flip a payload byte; the trailer checksum must catch it.
	data[len(data)-10] ^= 0xff
	_, err = ReadArchive(bytes.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	// Truncated stream.
	_, err = ReadArchive(bytes.NewReader(data[:8]))
	require.Error(t, err)

	// Wrong magic.
	bad := append([]byte("NOPE"), data[4:]...)
	_, err = ReadArchive(bytes.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}
