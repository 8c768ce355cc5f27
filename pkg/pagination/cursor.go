// Package pagination provides cursor-based pagination utilities for list
// endpoints. Cursors encode a stable position using a timestamp + ID for
// keyset pagination.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLimit is the default page size if not specified
	DefaultLimit = 50
	// MaxLimit is the maximum allowed page size
	MaxLimit = 500
)

// Cursor represents a stable pagination position.
// Uses timestamp + ID for keyset pagination.
type Cursor struct {
	Timestamp time.Time
	ID        string
}

// Encode serializes the cursor to an opaque string for clients.
// Format: base64("ts:{timestamp_ms}:id:{id}")
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("ts:%d:id:%s", c.Timestamp.UnixMilli(), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an encoded cursor string.
// Returns an error if the cursor format is invalid.
func DecodeCursor(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor encoding: %w", err)
	}

	raw := string(data)
	if !strings.HasPrefix(raw, "ts:") {
		return nil, fmt.Errorf("invalid cursor format: missing ts prefix")
	}

	parts := strings.SplitN(raw[len("ts:"):], ":id:", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format: missing id segment")
	}

	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}

	return &Cursor{Timestamp: time.UnixMilli(ms).UTC(), ID: parts[1]}, nil
}

// EncodeCursor is a convenience function to create and encode a cursor.
func EncodeCursor(timestamp time.Time, id string) string {
	return Cursor{Timestamp: timestamp, ID: id}.Encode()
}

// ClampLimit ensures limit is within valid bounds.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Params holds parsed pagination parameters.
type Params struct {
	Limit  int
	Cursor *Cursor
}

// ParseQuery parses limit and cursor query parameters from an HTTP request.
// An empty limit yields the default page size.
func ParseQuery(limitStr, cursorStr string) (*Params, error) {
	params := &Params{Limit: DefaultLimit}

	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit: %w", err)
		}
		params.Limit = ClampLimit(limit)
	}

	if cursorStr != "" {
		cursor, err := DecodeCursor(cursorStr)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor: %w", err)
		}
		params.Cursor = cursor
	}

	return params, nil
}

// KeysetBuilder helps construct keyset pagination SQL queries.
// It generates WHERE conditions and ORDER BY clauses for newest-first scans.
type KeysetBuilder struct {
	// TimestampColumn is the column name for the timestamp (e.g., "created_at")
	TimestampColumn string
	// IDColumn is the column name for the unique ID (e.g., "id")
	IDColumn string
}

// Condition returns a SQL WHERE clause fragment for keyset pagination.
// Returns empty string and nil args if no cursor is provided.
// The placeholder style uses $N for PostgreSQL.
func (b *KeysetBuilder) Condition(params *Params, startArgIdx int) (string, []interface{}) {
	if params.Cursor == nil {
		return "", nil
	}

	// WHERE (ts, id) < ($cursor_ts, $cursor_id)
	// This fetches items BEFORE the cursor position (older items when sorted DESC)
	return fmt.Sprintf("(%s, %s) < ($%d, $%d)",
			b.TimestampColumn, b.IDColumn, startArgIdx, startArgIdx+1),
		[]interface{}{params.Cursor.Timestamp, params.Cursor.ID}
}

// OrderBy returns a SQL ORDER BY clause for keyset pagination, newest first.
func (b *KeysetBuilder) OrderBy() string {
	return fmt.Sprintf("ORDER BY %s DESC, %s DESC", b.TimestampColumn, b.IDColumn)
}
