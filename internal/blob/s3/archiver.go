package s3blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nkoval/govscan/internal/domain"
)

// multipartThreshold is the payload size above which uploads switch to the
// multipart manager. Proposal payloads are normally a few KiB; the threshold
// only matters for pathological preimages.
const multipartThreshold = 8 * 1024 * 1024

// Archiver implements domain.ProposalArchiver by writing one JSON object per
// proposal under proposals/<network>/<id>.json.
type Archiver struct {
	client *s3.Client
	bucket string
}

// NewArchiver creates an Archiver on the given client's bucket.
func NewArchiver(c *Client) *Archiver {
	return &Archiver{client: c.s3, bucket: c.bucket}
}

// ArchiveProposal uploads the raw explorer payload for one proposal,
// overwriting any previous archive of the same proposal.
func (a *Archiver) ArchiveProposal(ctx context.Context, network string, proposalID uint32, raw []byte) error {
	key := fmt.Sprintf("proposals/%s/%d.json", network, proposalID)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	}

	if len(raw) > multipartThreshold {
		uploader := manager.NewUploader(a.client)
		if _, err := uploader.Upload(ctx, input); err != nil {
			return fmt.Errorf("s3blob: multipart archive %s: %w", key, err)
		}
		return nil
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3blob: archive %s: %w", key, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.ProposalArchiver = (*Archiver)(nil)
