package source

import (
	"context"
	"errors"
	"time"

	"github.com/ronospace/Flow-Ai-sub006/internal/models"
)

// ErrUnavailable marks a data source that cannot serve a query right now
// (bridge unreachable, permission denied, unsupported type). Callers branch
// on it to take the fallback path; it is never surfaced to consumers.
var ErrUnavailable = errors.New("data source unavailable")

// DataSource serves range queries for biometric readings. Every returned
// reading satisfies start <= timestamp < end.
type DataSource interface {
	Name() string
	Query(ctx context.Context, t models.ReadingType, start, end time.Time) ([]models.Reading, error)
}

// PushSource delivers live samples asynchronously. Implementations must
// tolerate malformed payloads by dropping and logging them, never by
// propagating a parse failure to the handler.
type PushSource interface {
	Subscribe(onReading func(models.Reading), onError func(error)) error
	Unsubscribe() error
}
