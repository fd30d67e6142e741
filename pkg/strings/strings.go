// Package strings provides pooled string building and interning for cohortdata.
//
// Roster files repeat the same handful of house, adviser and cohort values on
// every line. The Intern type collapses those repeats to one backing string,
// and the pooled builders keep name formatting and error messages off the
// allocator hot path.
package strings

import (
	"fmt"
	"strings"
	"sync"
)

// Builder is a thin wrapper around strings.Builder that can be pooled.
type Builder struct {
	sb strings.Builder
}

// NewBuilder creates a builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	b := &Builder{}
	b.sb.Grow(capacity)
	return b
}

// WriteString appends s to the builder.
func (b *Builder) WriteString(s string) {
	b.sb.WriteString(s)
}

// WriteByte appends c to the builder.
func (b *Builder) WriteByte(c byte) error {
	return b.sb.WriteByte(c)
}

// Write implements io.Writer so the builder can be used with fmt.Fprintf.
func (b *Builder) Write(p []byte) (int, error) {
	return b.sb.Write(p)
}

// String returns the accumulated string.
func (b *Builder) String() string {
	return b.sb.String()
}

// Len returns the number of accumulated bytes.
func (b *Builder) Len() int {
	return b.sb.Len()
}

// Cap returns the capacity of the underlying buffer.
func (b *Builder) Cap() int {
	return b.sb.Cap()
}

// Reset clears the builder.
func (b *Builder) Reset() {
	b.sb.Reset()
}

// Grow grows the builder's capacity by at least n bytes.
func (b *Builder) Grow(n int) {
	b.sb.Grow(n)
}

// BuilderSize selects one of the builder pools.
type BuilderSize int

const (
	Small  BuilderSize = iota // < 1KB
	Medium                    // 1KB - 16KB
	Large                     // 16KB+
)

var (
	smallBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(1024)
		},
	}

	mediumBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(16 * 1024)
		},
	}

	largeBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(64 * 1024)
		},
	}
)

func poolFor(size BuilderSize) *sync.Pool {
	switch size {
	case Medium:
		return mediumBuilderPool
	case Large:
		return largeBuilderPool
	default:
		return smallBuilderPool
	}
}

func sizeFor(n int) BuilderSize {
	switch {
	case n > 16*1024:
		return Large
	case n > 1024:
		return Medium
	default:
		return Small
	}
}

// GetBuilder retrieves a reset builder from the pool of the given size.
func GetBuilder(size BuilderSize) *Builder {
	builder := poolFor(size).Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to its pool. Strings obtained from the builder
// must not be retained unless cloned first.
func PutBuilder(builder *Builder, size BuilderSize) {
	if builder == nil {
		return
	}
	builder.Reset()
	poolFor(size).Put(builder)
}

// Concat concatenates strings using a pooled builder.
func Concat(parts ...string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}

	total := 0
	for _, s := range parts {
		total += len(s)
	}

	size := sizeFor(total)
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	builder.Grow(total)
	for _, s := range parts {
		builder.WriteString(s)
	}
	return strings.Clone(builder.String())
}

// Sprintf is a pooled alternative to fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	size := sizeFor(len(format) + len(args)*16)
	builder := GetBuilder(size)
	defer PutBuilder(builder, size)

	fmt.Fprintf(builder, format, args...)
	return strings.Clone(builder.String())
}

// Intern deduplicates equal strings so they share one allocation.
// It is safe for concurrent use.
type Intern struct {
	mu      sync.RWMutex
	strings map[string]string
}

// NewIntern creates a new string interner.
func NewIntern() *Intern {
	return &Intern{
		strings: make(map[string]string),
	}
}

// Get returns the interned version of s.
func (intern *Intern) Get(s string) string {
	intern.mu.RLock()
	interned, exists := intern.strings[s]
	intern.mu.RUnlock()
	if exists {
		return interned
	}

	intern.mu.Lock()
	defer intern.mu.Unlock()
	if interned, exists := intern.strings[s]; exists {
		return interned
	}
	// Own the memory; s may point into a scanner buffer.
	cloned := strings.Clone(s)
	intern.strings[cloned] = cloned
	return cloned
}
