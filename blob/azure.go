package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
)

// AzureBlockCountLimit is PutBlockList's maximum number of blocks per blob,
// carried over from the original project's write path.
const AzureBlockCountLimit = 50000

// AzurePath implements Reader and Writer against a single blob in an Azure
// Storage container, via the SDK's block blob client.
type AzurePath struct {
	client *blockblob.Client
}

// NewAzurePath wraps an existing blockblob.Client. Callers are expected to
// have constructed the client with whatever credential chain (shared key,
// SAS, workload identity, ...) fits their environment; this package does
// not do any credential handling of its own.
func NewAzurePath(client *blockblob.Client) *AzurePath {
	return &AzurePath{client: client}
}

// NewAzurePathFromConnectionString is a convenience constructor for the
// common case of a connection-string-based credential.
func NewAzurePathFromConnectionString(connectionString, containerName, blobName string) (*AzurePath, error) {
	svc, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("blob: azure client: %w", err)
	}
	client := svc.ServiceClient().NewContainerClient(containerName).NewBlockBlobClient(blobName)
	return &AzurePath{client: client}, nil
}

func (p *AzurePath) Size(ctx context.Context) (int64, error) {
	props, err := p.client.GetProperties(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("blob: azure get properties: %w", err)
	}
	if props.ContentLength == nil {
		return 0, fmt.Errorf("blob: azure get properties: missing content length")
	}
	return *props.ContentLength, nil
}

func (p *AzurePath) ReadRange(ctx context.Context, r ByteRange) ([]byte, error) {
	count := r.size()
	resp, err := p.client.DownloadStream(ctx, &blob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: r.Start, Count: count},
	})
	if err != nil {
		return nil, fmt.Errorf("blob: azure download range %+v: %w", r, err)
	}
	defer resp.Body.Close()

	buf := bytes.NewBuffer(make([]byte, 0, count))
	if _, err := io.Copy(buf, resp.Body); err != nil {
		return nil, fmt.Errorf("blob: azure read range %+v: %w", r, err)
	}
	return buf.Bytes(), nil
}

func (p *AzurePath) WriteBlock(ctx context.Context, blockID string, data []byte) error {
	if _, err := p.client.StageBlock(ctx, encodeBlockID(blockID), streamOf(data), nil); err != nil {
		return fmt.Errorf("blob: azure stage block %s: %w", blockID, err)
	}
	return nil
}

func (p *AzurePath) Commit(ctx context.Context, orderedBlockIDs []string) error {
	if len(orderedBlockIDs) > AzureBlockCountLimit {
		return fmt.Errorf("blob: azure commit: %d blocks exceeds limit of %d", len(orderedBlockIDs), AzureBlockCountLimit)
	}
	ids := make([]string, len(orderedBlockIDs))
	for i, id := range orderedBlockIDs {
		ids[i] = encodeBlockID(id)
	}
	if _, err := p.client.CommitBlockList(ctx, ids, nil); err != nil {
		return fmt.Errorf("blob: azure commit block list: %w", err)
	}
	return nil
}

// encodeBlockID base64-encodes a fixed-width block ID, the format
// PutBlockList/StageBlock expect.
func encodeBlockID(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(id))
}

func streamOf(data []byte) io.ReadSeekCloser {
	return nopSeekCloser{bytes.NewReader(data)}
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
