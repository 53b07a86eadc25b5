// Package cache memoizes resolved result tables with a time-to-live.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/sdg2-indicator-service/internal/domain"
)

// Store is a time-bounded result cache. Implementations must be safe for
// concurrent use and must never return an entry older than its TTL.
type Store interface {
	Get(ctx context.Context, key string) (domain.ResultTable, bool, error)
	Put(ctx context.Context, key string, table domain.ResultTable, ttl time.Duration) error
}

// Entry is a cached table plus the time it was created.
type Entry struct {
	Table     domain.ResultTable `json:"table"`
	CreatedAt time.Time          `json:"created_at"`
	TTL       time.Duration      `json:"ttl"`
}

// Expired reports whether the entry is older than its TTL at now.
func (e Entry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}

func sortedCodes(countries []string) string {
	codes := make([]string, len(countries))
	for i, c := range countries {
		codes[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

// LiveKey is the key of a live-fetched table: source, indicator, sorted
// country list and the year range.
func LiveKey(src domain.Source, indicator string, countries []string, minYear, maxYear int) string {
	return fmt.Sprintf("live|%s|%s|%s|%d-%d", src, indicator, sortedCodes(countries), minYear, maxYear)
}

// FallbackKey is the key of a reference-statistics table. It lists every
// requested year because fallback tables hold one row per requested year.
func FallbackKey(src domain.Source, indicator string, countries []string, years []int) string {
	ys := make([]string, len(years))
	for i, y := range years {
		ys[i] = strconv.Itoa(y)
	}
	return fmt.Sprintf("fallback|%s|%s|%s|%s", src, indicator, sortedCodes(countries), strings.Join(ys, ","))
}
