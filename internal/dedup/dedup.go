// Package dedup tracks prompt digests of generated questions so batch
// generation does not surface the same content twice for a coordinate.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/vnexam/examgen/internal/question"
)

// Digest reduces a prompt to a stable key: lower-cased, whitespace
// collapsed, hashed.
func Digest(prompt string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Registry remembers which prompt digests have been seen per
// coordinate. Seen records the digest and reports whether it was
// already present.
type Registry interface {
	Seen(ctx context.Context, coord question.Coordinate, digest string) (bool, error)
}

// MemoryRegistry is the in-process Registry used when no cache backend
// is configured.
type MemoryRegistry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{seen: make(map[string]struct{})}
}

func (r *MemoryRegistry) Seen(_ context.Context, coord question.Coordinate, digest string) (bool, error) {
	key := coord.String() + "|" + digest
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[key]; ok {
		return true, nil
	}
	r.seen[key] = struct{}{}
	return false, nil
}

// Prime loads existing bank content into the registry so freshly
// generated candidates are also checked against kept questions.
func Prime(ctx context.Context, reg Registry, qs []question.Question) error {
	for _, q := range qs {
		if _, err := reg.Seen(ctx, q.Coordinate, Digest(q.Prompt)); err != nil {
			return err
		}
	}
	return nil
}
