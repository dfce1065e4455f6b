// Package report collects the data-quality diagnostics produced while
// resolving annotation documents: warning lines plus named, deduplicated
// message buckets that callers inspect after a run.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Bucket names used by the resolution pipeline.
const (
	MissingClasses         = "missing_classes"
	MissingAttributeGroups = "missing_attribute_groups"
	MissingAttributes      = "missing_attributes"
)

// Reporter is the diagnostics sink the resolvers write to.
type Reporter interface {
	LogWarning(msg string)
	StoreMessage(bucket, value string)
}

// Report is the default Reporter. It is safe for concurrent use so that a
// single report can aggregate the diagnostics of a parallel batch.
type Report struct {
	mu       sync.Mutex
	logger   *slog.Logger
	warnings []string
	buckets  map[string]*orderedSet
	order    []string
}

// New creates an empty report that logs warnings to logger. A nil logger
// discards log output; warnings are still recorded.
func New(logger *slog.Logger) *Report {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Report{
		logger:  logger,
		buckets: make(map[string]*orderedSet),
	}
}

// LogWarning logs msg at warn level and records it.
func (r *Report) LogWarning(msg string) {
	r.logger.Warn(msg)

	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
}

// StoreMessage adds value to the named bucket. Repeated values are ignored.
func (r *Report) StoreMessage(bucket, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.buckets[bucket]
	if !ok {
		set = newOrderedSet()
		r.buckets[bucket] = set
		r.order = append(r.order, bucket)
	}
	set.add(value)
}

// Warnings returns the recorded warnings in emission order.
func (r *Report) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// Messages returns the values stored in bucket in first-insertion order.
func (r *Report) Messages(bucket string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.buckets[bucket]
	if !ok {
		return nil
	}
	return set.values()
}

// Buckets returns the names of non-empty buckets in creation order.
func (r *Report) Buckets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Empty reports whether nothing has been recorded.
func (r *Report) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings) == 0 && len(r.order) == 0
}

// Merge copies other's warnings and bucket contents into r without logging
// them again.
func (r *Report) Merge(other *Report) {
	if other == nil || other == r {
		return
	}
	warnings := other.Warnings()
	buckets := other.Buckets()
	contents := make(map[string][]string, len(buckets))
	for _, b := range buckets {
		contents[b] = other.Messages(b)
	}

	r.mu.Lock()
	r.warnings = append(r.warnings, warnings...)
	r.mu.Unlock()

	for _, b := range buckets {
		for _, v := range contents[b] {
			r.StoreMessage(b, v)
		}
	}
}

// Summary renders one line per bucket, sorted by bucket name, with the
// bucket's values sorted alphabetically.
func (r *Report) Summary() string {
	buckets := r.Buckets()
	sort.Strings(buckets)

	var sb strings.Builder
	for _, b := range buckets {
		values := r.Messages(b)
		sort.Strings(values)
		fmt.Fprintf(&sb, "%s (%d): %s\n", b, len(values), strings.Join(values, ", "))
	}
	return sb.String()
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	return append([]string(nil), s.items...)
}
