package errors

import (
	"context"
	"fmt"
	"sync"
)

// WarningCode identifies a non-fatal storage condition
type WarningCode string

const (
	// WarnStorageTooLarge is raised when stored data exceeded the size
	// budget and was cleared on read.
	WarnStorageTooLarge WarningCode = "STORAGE_TOO_LARGE"
	// WarnStorageCorrupt is raised when stored data could not be decoded
	// and was cleared on read.
	WarnStorageCorrupt WarningCode = "STORAGE_CORRUPT"
)

// Warning describes a self-healed read. The caller still receives a usable
// (empty) value; the warning travels back on the context's collector so the
// event can be logged and shown to the user.
type Warning struct {
	Code   WarningCode `json:"code"`
	Key    string      `json:"key"`
	Detail string      `json:"detail,omitempty"`
}

// String formats the warning for logs
func (w Warning) String() string {
	if w.Detail != "" {
		return fmt.Sprintf("%s [%s]: %s", w.Code, w.Key, w.Detail)
	}
	return fmt.Sprintf("%s [%s]", w.Code, w.Key)
}

// NewStorageTooLargeWarning creates a too-large warning for key
func NewStorageTooLargeWarning(key string, size, limit int) *Warning {
	return &Warning{
		Code:   WarnStorageTooLarge,
		Key:    key,
		Detail: fmt.Sprintf("stored size %d exceeds budget of %d bytes", size, limit),
	}
}

// NewStorageCorruptWarning creates a corrupt-data warning for key
func NewStorageCorruptWarning(key string, cause error) *Warning {
	w := &Warning{Code: WarnStorageCorrupt, Key: key}
	if cause != nil {
		w.Detail = cause.Error()
	}
	return w
}

// UserMessage is the notice shown to whoever was affected by the reset
func (w Warning) UserMessage() string {
	switch w.Code {
	case WarnStorageTooLarge:
		return fmt.Sprintf("Saved %s data was too large and has been cleared. Starting fresh!", w.Key)
	default:
		return fmt.Sprintf("Saved %s data could not be read and has been cleared. Starting fresh!", w.Key)
	}
}

type collectorKey struct{}

// WarningCollector gathers the warnings raised while serving one request
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
}

// WithWarnings returns a context carrying a collector. A collector already
// carried by ctx is reused, so nested callers share one.
func WithWarnings(ctx context.Context) (context.Context, *WarningCollector) {
	if c := WarningsFrom(ctx); c != nil {
		return ctx, c
	}
	c := &WarningCollector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// WarningsFrom returns the collector carried by ctx, or nil
func WarningsFrom(ctx context.Context) *WarningCollector {
	c, _ := ctx.Value(collectorKey{}).(*WarningCollector)
	return c
}

// ReportWarning records w on the collector carried by ctx. A nil warning or
// a context without a collector is ignored.
func ReportWarning(ctx context.Context, w *Warning) {
	if w == nil {
		return
	}
	if c := WarningsFrom(ctx); c != nil {
		c.mu.Lock()
		c.warnings = append(c.warnings, *w)
		c.mu.Unlock()
	}
}

// Len reports how many warnings were collected
func (c *WarningCollector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// Warnings returns a copy of every collected warning
func (c *WarningCollector) Warnings() []Warning {
	return c.Since(0)
}

// Since returns a copy of the warnings collected after the first n
func (c *WarningCollector) Since(n int) []Warning {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n >= len(c.warnings) {
		return nil
	}
	out := make([]Warning, len(c.warnings)-n)
	copy(out, c.warnings[n:])
	return out
}
