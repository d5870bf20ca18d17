package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ezcompose/internal/compose"
)

// BundleSchema is bumped whenever BundlePayload changes shape.
const BundleSchema uint16 = 1

// BundlePayload is the msgpack document written by Bundle.
type BundlePayload struct {
	Schema     uint16    `msgpack:"schema"`
	SessionID  string    `msgpack:"session_id"`
	ExportedAt time.Time `msgpack:"exported_at"`
	Files      []string  `msgpack:"files"`
	Text       string    `msgpack:"text"`
}

// Bundle exports the aggregate and the touched-file log as msgpack, for
// tools that want the file list alongside the text.
type Bundle struct {
	Path      string
	SessionID string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (b Bundle) Name() string { return b.Path }

func (b Bundle) Write(_ context.Context, st compose.State) error {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	payload := BundlePayload{
		Schema:     BundleSchema,
		SessionID:  b.SessionID,
		ExportedAt: now().UTC(),
		Files:      append([]string(nil), st.Files...),
		Text:       st.Text,
	}
	return writeAtomic(b.Path, func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(&payload)
	})
}

// ReadBundle decodes a bundle written by Bundle.
func ReadBundle(path string) (BundlePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return BundlePayload{}, err
	}
	defer f.Close()

	var payload BundlePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return BundlePayload{}, fmt.Errorf("%s: decode bundle: %w", path, err)
	}
	if payload.Schema != BundleSchema {
		return BundlePayload{}, fmt.Errorf("%s: unsupported bundle schema %d (want %d)", path, payload.Schema, BundleSchema)
	}
	return payload, nil
}
