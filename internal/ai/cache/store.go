package cache

import (
	"context"
	"strings"

	"github.com/yungbote/acadboost-backend/internal/pkg/fingerprint"
)

// Entry is a memoized flow outcome: either an output or a terminal error
// message, never both.
type Entry struct {
	Output       map[string]any `json:"output,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

func (e Entry) Failed() bool { return e.ErrorMessage != "" }

func Failure(msg string) Entry { return Entry{ErrorMessage: msg} }

func Success(out map[string]any) Entry { return Entry{Output: out} }

// Store holds entries per browsing session. Entries live until the session is
// cleared or expires.
type Store interface {
	Get(ctx context.Context, session, key string) (Entry, bool, error)
	Put(ctx context.Context, session, key string, e Entry) error
	Clear(ctx context.Context, session string) error
}

// Key scopes a UI placement to the input it was computed from, so distinct
// inputs under one placement never share an entry.
func Key(placement string, input map[string]any) string {
	placement = strings.TrimSpace(placement)
	return placement + ":" + fingerprint.JSON(input)[:16]
}
