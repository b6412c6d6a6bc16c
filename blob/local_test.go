package blob_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiffanycitra/boostedblob/blob"
	"github.com/tiffanycitra/boostedblob/boost"
)

func TestLocalPathUploadDownloadRoundTrip(t *testing.T) {
	tests := []struct {
		name       string
		size       int
		blockSize  int64
		chunkSize  int64
		concurrent int
	}{
		{"single-block", 100, 0, 0, 4},
		{"even-blocks", 4096, 1024, 1024, 4},
		{"uneven-tail", 4096 + 137, 1024, 1024, 4},
		{"block-larger-than-data", 50, 4096, 4096, 2},
		{"c1", 1000, 100, 100, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := make([]byte, tc.size)
			for i := range data {
				data[i] = byte(i % 251)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "obj.bin")
			w := blob.NewLocalPath(path)

			ctx := context.Background()
			err := boost.Run(ctx, tc.concurrent, func(ctx context.Context, e *boost.Executor) error {
				return blob.UploadUnordered(ctx, e, w, data, tc.blockSize, 0)
			})
			require.NoError(t, err)

			r := blob.NewLocalPath(path)
			var got []byte
			err = boost.Run(ctx, tc.concurrent, func(ctx context.Context, e *boost.Executor) error {
				it, err := blob.DownloadOrdered(ctx, e, r, tc.chunkSize)
				if err != nil {
					return err
				}
				defer it.Close()
				for it.Next() {
					if err := it.Err(); err != nil {
						return err
					}
					got = append(got, it.Value()...)
				}
				return nil
			})
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got), "round-tripped data mismatch for %s", tc.name)
		})
	}
}

func TestLocalPathUploadRejectsOverBlockLimit(t *testing.T) {
	dir := t.TempDir()
	w := blob.NewLocalPath(filepath.Join(dir, "obj.bin"))
	data := make([]byte, 10)

	ctx := context.Background()
	err := boost.Run(ctx, 2, func(ctx context.Context, e *boost.Executor) error {
		return blob.UploadUnordered(ctx, e, w, data, 1, 5)
	})
	assert.ErrorContains(t, err, "exceeds backend limit")
}

func TestLocalPathCommitRejectsUnknownBlock(t *testing.T) {
	dir := t.TempDir()
	w := blob.NewLocalPath(filepath.Join(dir, "obj.bin"))
	err := w.Commit(context.Background(), []string{"00000000"})
	assert.ErrorContains(t, err, "unknown block")
}

func TestLocalPathSizeAndReadRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "obj.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	p := blob.NewLocalPath(path)
	ctx := context.Background()

	size, err := p.Size(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 11, size)

	got, err := p.ReadRange(ctx, blob.ByteRange{Start: 6, End: 11})
	require.NoError(t, err)
	assert.Equal(t, "world", string(got))
}
