package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arthurgayecom/arbitrage-buddy-pro/internal/domain"
)

// Archiver moves expired opportunities to cold storage. Rows are serialized
// to JSONL and uploaded under a month-partitioned key; deletion from the
// primary store is deliberately left to the operator so an archive can be
// verified before the rows disappear.
type Archiver struct {
	writer domain.BlobWriter
	opps   domain.OpportunityStore
	logger *slog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(writer domain.BlobWriter, opps domain.OpportunityStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		opps:   opps,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveExpired uploads every expired opportunity last updated before the
// cutoff to archive/opportunities/YYYY-MM.jsonl and returns the count.
func (a *Archiver) ArchiveExpired(ctx context.Context, before time.Time) (int64, error) {
	opps, err := a.opps.ListExpiredBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive query: %w", err)
	}
	if len(opps) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(opps)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive marshal: %w", err)
	}

	path := archivePath(before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive upload: %w", err)
	}

	count := int64(len(opps))
	a.logger.Info("archived expired opportunities",
		slog.String("path", path),
		slog.Int64("count", count),
		slog.Time("before", before),
	)
	return count, nil
}

// archivePath builds the object key, partitioned by the cutoff's year-month:
//
//	archive/opportunities/2026-08.jsonl
func archivePath(before time.Time) string {
	return fmt.Sprintf("archive/opportunities/%s.jsonl", before.Format("2006-01"))
}

// marshalJSONL serializes records as newline-delimited JSON.
func marshalJSONL(opps []domain.Opportunity) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, o := range opps {
		if err := enc.Encode(o); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
