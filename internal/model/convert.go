package model

import (
	"strconv"
	"time"
)

// IDString converts an internal identifier to its boundary form.
func IDString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// IDStrings converts a slice of internal identifiers.
func IDStrings(ids []int64) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = IDString(id)
	}
	return out
}

// Millis converts a timestamp to epoch milliseconds, the boundary form for
// all timestamps.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
