// Package blob is a thin client of the boost executor: it expresses chunked
// reads and writes against a storage backend as ordered/unordered mapping
// pipelines, the concrete shape the core executor was built to serve. HTTP
// request signing, path dispatch between storage kinds, and GCS support are
// out of scope here; see the Local and Azure adapters for the two
// backends this package actually wires up.
package blob

import (
	"context"
	"fmt"
	"sort"

	"github.com/tiffanycitra/boostedblob/boost"
)

// ByteRange is a half-open [Start, End) range of bytes within an object.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) size() int64 { return r.End - r.Start }

// Reader reads one range of an object at a time. Implementations are
// expected to be safe for concurrent use, since DownloadOrdered calls
// ReadRange from multiple goroutines at once.
type Reader interface {
	ReadRange(ctx context.Context, r ByteRange) ([]byte, error)
	Size(ctx context.Context) (int64, error)
}

// Writer accepts an object's content as a sequence of blocks, committed
// once every block has been written. Implementations are expected to be
// safe for concurrent use, since UploadUnordered calls WriteBlock from
// multiple goroutines at once; Commit is called once after every block has
// completed.
type Writer interface {
	WriteBlock(ctx context.Context, blockID string, data []byte) error
	Commit(ctx context.Context, orderedBlockIDs []string) error
}

// chunkRanges splits [0, size) into chunkSize-sized half-open ranges.
func chunkRanges(size, chunkSize int64) []ByteRange {
	if chunkSize <= 0 {
		chunkSize = size
	}
	var ranges []ByteRange
	for start := int64(0); start < size; start += chunkSize {
		end := start + chunkSize
		if end > size {
			end = size
		}
		ranges = append(ranges, ByteRange{Start: start, End: end})
	}
	return ranges
}

// DownloadOrdered reads r in chunkSize-sized ranges, using e's concurrency
// to overlap network reads, and returns the chunks in file order.
func DownloadOrdered(ctx context.Context, e *boost.Executor, r Reader, chunkSize int64) (*boost.ResultIterator[[]byte], error) {
	size, err := r.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("blob: stat: %w", err)
	}
	ranges := chunkRanges(size, chunkSize)
	stage := boost.MapOrdered(e, func(ctx context.Context, rng ByteRange) ([]byte, error) {
		return r.ReadRange(ctx, rng)
	}, boost.FromSlice(ranges))
	return stage.Iterate(ctx), nil
}

type block struct {
	index int
	data  []byte
}

// blockID names a block by its position so the commit list can be
// reassembled in order regardless of which block finished uploading first.
func blockID(index int) string {
	return fmt.Sprintf("%08d", index)
}

// UploadUnordered splits data into blockSize-sized blocks, uploads them
// concurrently via w.WriteBlock in whatever order they happen to complete,
// then commits them in their original order. maxBlocks, when positive,
// rejects data that would need more blocks than the backend allows (Azure's
// PutBlockList caps out at 50000 blocks per blob).
func UploadUnordered(ctx context.Context, e *boost.Executor, w Writer, data []byte, blockSize int64, maxBlocks int) error {
	if blockSize <= 0 {
		blockSize = int64(len(data))
	}
	var blocks []block
	for start, idx := int64(0), 0; start < int64(len(data)); start, idx = start+blockSize, idx+1 {
		end := start + blockSize
		if end > int64(len(data)) {
			end = int64(len(data))
		}
		blocks = append(blocks, block{index: idx, data: data[start:end]})
	}
	if maxBlocks > 0 && len(blocks) > maxBlocks {
		return fmt.Errorf("blob: %d blocks exceeds backend limit of %d", len(blocks), maxBlocks)
	}

	stage := boost.MapUnordered(e, func(ctx context.Context, b block) (block, error) {
		id := blockID(b.index)
		if err := w.WriteBlock(ctx, id, b.data); err != nil {
			return block{}, err
		}
		return block{index: b.index}, nil
	}, boost.FromSlice(blocks))

	it := stage.Iterate(ctx)
	uploaded := make([]block, 0, len(blocks))
	for it.Next() {
		if err := it.Err(); err != nil {
			return fmt.Errorf("blob: uploading block: %w", err)
		}
		uploaded = append(uploaded, it.Value())
	}
	sort.Slice(uploaded, func(i, j int) bool { return uploaded[i].index < uploaded[j].index })

	ids := make([]string, len(uploaded))
	for i, b := range uploaded {
		ids[i] = blockID(b.index)
	}
	return w.Commit(ctx, ids)
}
