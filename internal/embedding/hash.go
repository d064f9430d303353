package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// HashEmbedder derives deterministic vectors from token hashes. It needs no
// model or network and keeps similar texts close enough for tests and for
// running without an embedding service. Document and query encodings are
// identical.
type HashEmbedder struct {
	dims int
}

// NewHashEmbedder creates a hash-based embedder with the given dimensionality.
func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 64
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) EncodeDocument(_ context.Context, text string) (Vector, error) {
	return e.encode(text), nil
}

func (e *HashEmbedder) EncodeQuery(_ context.Context, text string) (Vector, error) {
	return e.encode(text), nil
}

func (e *HashEmbedder) encode(text string) Vector {
	v := make(Vector, e.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[int(h.Sum32())%e.dims] += 1
	}
	return Normalize(v)
}

func (e *HashEmbedder) Dims() int { return e.dims }
