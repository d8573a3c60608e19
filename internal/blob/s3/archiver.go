package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/signalboard/signalboard/internal/domain"
)

// streamBatchSize is how many stream entries are fetched per XREAD call while
// walking the analysis stream.
const streamBatchSize = 500

// multipartThreshold is the payload size at which uploads switch to the
// multipart path.
const multipartThreshold int64 = 32 * 1024 * 1024

// Archiver implements domain.SignalArchiver by walking the durable analysis
// stream, serializing matching records to JSONL, and uploading the result to
// blob storage.
//
// The stream retains recent analyses (trimmed by MAXLEN); archival copies a
// month's worth of them into a durable object before they age out.
type Archiver struct {
	writer domain.BlobWriter
	bus    domain.SignalBus
	stream string
}

// NewArchiver creates an Archiver that reads analyses from the given stream.
func NewArchiver(writer domain.BlobWriter, bus domain.SignalBus, stream string) *Archiver {
	return &Archiver{
		writer: writer,
		bus:    bus,
		stream: stream,
	}
}

// ArchiveMonth reads every analysis recorded in the month containing ts,
// serializes them to JSONL, and uploads the file at
// archive/signals/YYYY-MM.jsonl. It returns the number of records written.
// A month with no analyses uploads nothing and returns 0.
func (a *Archiver) ArchiveMonth(ctx context.Context, ts time.Time) (int64, error) {
	monthStart := time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var records []domain.Analysis

	lastID := "0"
	for {
		msgs, err := a.bus.StreamRead(ctx, a.stream, lastID, streamBatchSize)
		if err != nil {
			return 0, fmt.Errorf("s3blob: archive read stream %s: %w", a.stream, err)
		}
		if len(msgs) == 0 {
			break
		}

		for _, msg := range msgs {
			lastID = msg.ID

			var analysis domain.Analysis
			if err := json.Unmarshal(msg.Payload, &analysis); err != nil {
				// Skip entries that are not analysis payloads.
				continue
			}
			created := analysis.CreatedAt.UTC()
			if created.Before(monthStart) || !created.Before(monthEnd) {
				continue
			}
			records = append(records, analysis)
		}
	}

	if len(records) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive marshal: %w", err)
	}

	path := ArchivePath(monthStart)
	if int64(len(buf)) >= multipartThreshold {
		err = a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize)
	} else {
		err = a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson")
	}
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive upload %s: %w", path, err)
	}

	return int64(len(records)), nil
}

// ArchivePath builds the object key for a month's analysis archive.
//
//	archive/signals/2026-01.jsonl
func ArchivePath(month time.Time) string {
	return fmt.Sprintf("archive/signals/%s.jsonl", month.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.SignalArchiver = (*Archiver)(nil)
