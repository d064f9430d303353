// Package store provides the SQLite-backed memory store: persistence plus the
// retrieval pipeline composed from the embedding, lexical, predictive,
// association, workspace, hopfield, and consolidate packages.
package store

import (
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"

	"github.com/recollectdb/recollect/internal/association"
	"github.com/recollectdb/recollect/internal/consolidate"
	"github.com/recollectdb/recollect/internal/embedding"
	"github.com/recollectdb/recollect/internal/hopfield"
	"github.com/recollectdb/recollect/internal/lexical"
	"github.com/recollectdb/recollect/internal/normalize"
)

var (
	// ErrNotFound is returned when an explicit-id operation references an
	// absent memory or episode.
	ErrNotFound = errors.New("not found")
	// ErrNotConnected is returned when the store is used after Close.
	ErrNotConnected = errors.New("store not connected")
	// ErrInvalidDirection is returned for unknown causal traversal directions.
	ErrInvalidDirection = errors.New("invalid traversal direction")
)

// Options configures a MemoryStore.
type Options struct {
	// Embedder computes document/query vectors. Required; without it a memory
	// cannot be saved.
	Embedder embedding.Embedder
	// Reading returns a canonical pronunciation key, used for exact-match
	// bonuses in scored search. Defaults to normalize.NoReading.
	Reading normalize.ReadingFunc
	// EnableLexical toggles the BM25 re-ranking boost in scored search.
	EnableLexical bool
	// DecayHalfLifeDays is the recency half-life for scored search.
	DecayHalfLifeDays float64
	// MaxConcurrentEmbeds bounds in-flight embedding calls.
	MaxConcurrentEmbeds int64
	// HopfieldBeta is the inverse temperature for pattern completion.
	HopfieldBeta float64
	// HopfieldIters is the number of Hopfield update iterations.
	HopfieldIters int
}

func (o *Options) fill() {
	if o.Reading == nil {
		o.Reading = normalize.NoReading
	}
	if o.DecayHalfLifeDays <= 0 {
		o.DecayHalfLifeDays = 30.0
	}
	if o.MaxConcurrentEmbeds <= 0 {
		o.MaxConcurrentEmbeds = 4
	}
	if o.HopfieldBeta <= 0 {
		o.HopfieldBeta = 4.0
	}
	if o.HopfieldIters <= 0 {
		o.HopfieldIters = 3
	}
}

// MemoryStore owns all persisted state. The other engine components operate on
// transient snapshots it hands them and hold no persistent references.
type MemoryStore struct {
	db      *sql.DB
	entropy *rand.Rand
	opts    Options

	embedSem    *semaphore.Weighted
	lexical     *lexical.Index
	hopfield    *hopfield.Network
	assoc       *association.Engine
	consolidate *consolidate.Engine
	working     *WorkingMemory
}

// New opens (or creates) the store at dbPath.
func New(dbPath string, opts Options) (*MemoryStore, error) {
	opts.fill()
	if opts.Embedder == nil {
		return nil, errors.New("embedder is required")
	}

	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	s := &MemoryStore{
		db:          db,
		entropy:     rand.New(rand.NewSource(time.Now().UnixNano())),
		opts:        opts,
		embedSem:    semaphore.NewWeighted(opts.MaxConcurrentEmbeds),
		lexical:     lexical.NewIndex(),
		hopfield:    hopfield.NewNetwork(opts.HopfieldBeta, opts.HopfieldIters),
		assoc:       association.NewEngine(),
		consolidate: consolidate.NewEngine(),
		working:     NewWorkingMemory(20),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *MemoryStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WorkingMemory returns the short-term buffer of recently saved memories.
func (s *MemoryStore) WorkingMemory() *WorkingMemory {
	return s.working
}

func (s *MemoryStore) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, ErrNotConnected
	}
	return s.db, nil
}

func (s *MemoryStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}
