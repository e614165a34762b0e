package ql

import (
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/tinyql/internal/value"
)

// DefaultCacheSize is the number of compiled queries a Compiler keeps.
const DefaultCacheSize = 256

// Compiler compiles queries and caches the resulting predicates, keyed by
// the sorted-key JSON of the query. Queries that differ only in key order
// or number formatting share one entry; strings are compared byte for
// byte, so NFC-equivalent spellings get separate entries.
//
// A Compiler is safe for concurrent use.
type Compiler struct {
	cache *lru.Cache[string, Predicate]
}

type compilerConfig struct {
	cacheSize int
}

// Option configures a Compiler.
type Option func(*compilerConfig)

// WithCacheSize sets the number of cached predicates.
func WithCacheSize(n int) Option {
	return func(c *compilerConfig) {
		c.cacheSize = n
	}
}

// NewCompiler returns a Compiler.
func NewCompiler(opts ...Option) (*Compiler, error) {
	cfg := compilerConfig{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	cache, err := lru.New[string, Predicate](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create compile cache: %w", err)
	}
	return &Compiler{cache: cache}, nil
}

// Compile is like the package-level Compile but consults the cache first.
// Failed compilations are not cached.
func (c *Compiler) Compile(raw any) (Predicate, error) {
	q, err := value.Normalize(raw)
	if err != nil {
		return nil, &QuerySyntaxError{Message: "query is not a JSON value: " + err.Error()}
	}
	return c.compile(q)
}

// CompileJSON is like the package-level CompileJSON but consults the cache
// first.
func (c *Compiler) CompileJSON(data []byte) (Predicate, error) {
	q, err := value.Decode(data)
	if err != nil {
		return nil, &QuerySyntaxError{Message: err.Error()}
	}
	return c.compile(q)
}

func (c *Compiler) compile(q any) (Predicate, error) {
	key, err := value.MarshalExact(q)
	if err != nil {
		return nil, &QuerySyntaxError{Message: err.Error()}
	}
	if p, ok := c.cache.Get(string(key)); ok {
		slog.Debug("query cache hit", "query", string(key))
		return p, nil
	}

	p, err := compileNormalized(q)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), p)
	return p, nil
}

// Len returns the number of cached predicates.
func (c *Compiler) Len() int {
	return c.cache.Len()
}
