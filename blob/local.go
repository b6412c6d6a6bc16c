package blob

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// LocalPath implements Reader and Writer against a path on the local
// filesystem. There is no SDK to wire in here: os/io are the correct tool
// for local file access in any Go codebase in this lineage, so this adapter
// is legitimately stdlib-only (see DESIGN.md).
type LocalPath struct {
	path string

	mu     sync.Mutex
	blocks map[string][]byte
}

// NewLocalPath wraps path for chunked reading or writing.
func NewLocalPath(path string) *LocalPath {
	return &LocalPath{path: path}
}

func (p *LocalPath) Size(ctx context.Context) (int64, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return 0, fmt.Errorf("blob: stat %s: %w", p.path, err)
	}
	return info.Size(), nil
}

func (p *LocalPath) ReadRange(ctx context.Context, r ByteRange) ([]byte, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("blob: open %s: %w", p.path, err)
	}
	defer f.Close()

	buf := make([]byte, r.size())
	if _, err := f.ReadAt(buf, r.Start); err != nil {
		return nil, fmt.Errorf("blob: read %s %+v: %w", p.path, r, err)
	}
	return buf, nil
}

// WriteBlock stages one block in memory, keyed by its ID; Commit flushes
// every staged block to disk in the order given. Staging rather than
// writing at each offset directly keeps the write path identical in shape
// to the Azure adapter's stage-then-PutBlockList two-phase commit.
func (p *LocalPath) WriteBlock(ctx context.Context, blockID string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.blocks == nil {
		p.blocks = make(map[string][]byte)
	}
	p.blocks[blockID] = cp
	return nil
}

func (p *LocalPath) Commit(ctx context.Context, orderedBlockIDs []string) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("blob: create %s: %w", p.path, err)
	}
	defer f.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range orderedBlockIDs {
		data, ok := p.blocks[id]
		if !ok {
			return fmt.Errorf("blob: commit referenced unknown block %q", id)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("blob: write %s: %w", p.path, err)
		}
	}
	return nil
}
