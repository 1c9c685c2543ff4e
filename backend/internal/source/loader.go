package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/sync/errgroup"

	apperrors "unigraph/backend/pkg/errors"
)

// Paths names the four input files. An empty path disables that source.
type Paths struct {
	Faculty string
	Course  string
	Contact string
	General string
}

// Documents holds the raw input documents. A nil document means the source
// was disabled.
type Documents struct {
	Faculty json.RawMessage `json:"faculty,omitempty"`
	Course  json.RawMessage `json:"course,omitempty"`
	Contact json.RawMessage `json:"contact,omitempty"`
	General json.RawMessage `json:"general,omitempty"`

	// Repaired lists the files that only decoded after a repair pass
	Repaired []string `json:"-"`
}

// Load reads the configured input files concurrently. Malformed JSON gets
// one repair attempt; a file that cannot be read or repaired fails the load.
func Load(ctx context.Context, paths Paths) (Documents, error) {
	var (
		docs Documents
		mu   sync.Mutex
	)

	targets := []struct {
		path string
		dst  *json.RawMessage
	}{
		{paths.Faculty, &docs.Faculty},
		{paths.Course, &docs.Course},
		{paths.Contact, &docs.Contact},
		{paths.General, &docs.General},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		if t.path == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return apperrors.NewContextCancelled("load "+t.path, err)
			}
			raw, repaired, err := readDocument(t.path)
			if err != nil {
				return err
			}
			// each target owns its own field; only the shared slice needs the lock
			*t.dst = raw
			if repaired {
				mu.Lock()
				docs.Repaired = append(docs.Repaired, t.path)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Documents{}, err
	}
	return docs, nil
}

func readDocument(path string) (json.RawMessage, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, apperrors.NewInputUnreadable(path, err)
	}
	raw, repaired, err := Decode(data)
	if err != nil {
		return nil, false, apperrors.NewInputUnreadable(path, err)
	}
	return raw, repaired, nil
}

// Decode validates a document, repairing it once when it is not valid JSON
func Decode(data []byte) (json.RawMessage, bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, false, nil
	}
	if json.Valid(data) {
		return json.RawMessage(data), false, nil
	}
	fixed, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to repair json: %w", err)
	}
	if !json.Valid([]byte(fixed)) {
		return nil, false, fmt.Errorf("repaired document is still not valid json")
	}
	return json.RawMessage(fixed), true, nil
}
