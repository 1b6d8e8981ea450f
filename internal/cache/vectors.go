package cache

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// VectorStore is a typed layer over Cache for embedding vectors. Entries are
// keyed by embedding model and text, so a model switch never serves stale
// vectors. A nil store or nil backend disables memoization.
type VectorStore struct {
	backend Cache
	model   string
	ttl     time.Duration
}

// NewVectorStore creates a vector store over the given backend.
func NewVectorStore(backend Cache, embeddingModel string, ttl time.Duration) *VectorStore {
	if backend == nil {
		return nil
	}
	return &VectorStore{
		backend: backend,
		model:   embeddingModel,
		ttl:     ttl,
	}
}

// Get returns the cached vector for the text. Corrupt entries are evicted
// and reported as a miss.
func (v *VectorStore) Get(text string) ([]float32, bool) {
	if v == nil {
		return nil, false
	}

	key := EmbeddingKey(v.model, text)
	data, ok := v.backend.Get(key)
	if !ok {
		return nil, false
	}

	vec, err := DecodeVector(data)
	if err != nil {
		_ = v.backend.Delete(key)
		return nil, false
	}
	return vec, true
}

// Put stores the vector for the text under the store's TTL.
func (v *VectorStore) Put(text string, vec []float32) {
	if v == nil {
		return
	}
	_ = v.backend.Set(EmbeddingKey(v.model, text), EncodeVector(vec), v.ttl)
}

// EncodeVector serializes a vector as little-endian float32 words.
func EncodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, val := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(val))
	}
	return buf
}

// DecodeVector deserializes a vector encoded by EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("vector data length %d not a multiple of 4", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vec, nil
}
