// Package archive implements the evidence-writer external collaborator
// (§6): a serialized append-only log of navigation events, compressed to
// disk. Writing is exclusive per writer since interleaved event and frame
// writes would otherwise corrupt the archive's framing (§5). Like
// internal/controller, this is the other half of the deliberate zerolog
// seam (SPEC_FULL.md §A.1).
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Event is one archived navigation occurrence — an edge execution, an
// interrupt, or a dispatch.
type Event struct {
	Timestamp time.Time
	RoutineID string
	EdgeID    string
	Kind      string
	Detail    string
}

// Writer appends gzip-compressed, msgpack-encoded events to an underlying
// io.Writer, one at a time.
type Writer struct {
	mu  sync.Mutex
	gz  *gzip.Writer
	out io.Writer
}

// NewWriter wraps out with a gzip stream. Callers must call Close to flush
// the final block.
func NewWriter(out io.Writer) *Writer {
	return &Writer{gz: gzip.NewWriter(out), out: out}
}

// Append writes one event, serialized with msgpack and length-prefixed so
// a reader can split the decompressed stream back into events.
func (w *Writer) Append(ev Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	body, err := msgpack.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("edge_id", ev.EdgeID).Msg("archive: failed to encode event")
		return fmt.Errorf("archive: encoding event: %w", err)
	}
	length := uint32(len(body))
	header := []byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)}
	if _, err := w.gz.Write(header); err != nil {
		return fmt.Errorf("archive: writing header: %w", err)
	}
	if _, err := w.gz.Write(body); err != nil {
		return fmt.Errorf("archive: writing body: %w", err)
	}
	return nil
}

// Close flushes and closes the gzip stream.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.gz.Close(); err != nil {
		log.Error().Err(err).Msg("archive: failed to close writer")
		return fmt.Errorf("archive: closing: %w", err)
	}
	return nil
}

// Reader decompresses and decodes an archive back into its events, in
// order.
type Reader struct {
	gz *gzip.Reader
}

func NewReader(in io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("archive: opening gzip stream: %w", err)
	}
	return &Reader{gz: gz}, nil
}

// Next returns the next event, or io.EOF once the archive is exhausted.
func (r *Reader) Next() (Event, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r.gz, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return Event{}, err
	}
	length := uint32(header[0])<<24 | uint32(header[1])<<16 | uint32(header[2])<<8 | uint32(header[3])
	body := make([]byte, length)
	if _, err := io.ReadFull(r.gz, body); err != nil {
		return Event{}, fmt.Errorf("archive: short event body: %w", err)
	}
	var ev Event
	if err := msgpack.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("archive: decoding event: %w", err)
	}
	return ev, nil
}
