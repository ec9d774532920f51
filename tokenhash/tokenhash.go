// Package tokenhash keeps a running digest of every token that crosses a
// bridge, so that two runs of the same test can be checked for identical
// bridge traffic.
package tokenhash

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math/big"
	"sort"
	"sync"
)

// Digest summarizes one token stream.
type Digest struct {
	Stream string
	Count  uint64
	Hash   uint64
}

func (d Digest) String() string {
	return fmt.Sprintf("%s: %d tokens, hash 0x%016x", d.Stream, d.Count, d.Hash)
}

type stream struct {
	count uint64
	hash  hash.Hash64
}

// Hashers holds one digest per stream. It is safe for concurrent use.
type Hashers struct {
	lock    sync.Mutex
	streams map[string]*stream
}

// New creates an empty set of hashers.
func New() *Hashers {
	return &Hashers{
		streams: make(map[string]*stream),
	}
}

// ObserveToken folds a token into the digest of its stream.
func (h *Hashers) ObserveToken(name string, value *big.Int) {
	h.lock.Lock()
	defer h.lock.Unlock()

	s, ok := h.streams[name]
	if !ok {
		s = &stream{hash: fnv.New64a()}
		h.streams[name] = s
	}

	raw := value.Bytes()

	var hdr [9]byte
	if value.Sign() < 0 {
		hdr[0] = 1
	}
	binary.LittleEndian.PutUint64(hdr[1:], uint64(len(raw)))

	s.hash.Write(hdr[:])
	s.hash.Write(raw)
	s.count++
}

// Digests returns the digest of every stream, sorted by stream name.
func (h *Hashers) Digests() []Digest {
	h.lock.Lock()
	defer h.lock.Unlock()

	digests := make([]Digest, 0, len(h.streams))
	for name, s := range h.streams {
		digests = append(digests, Digest{
			Stream: name,
			Count:  s.count,
			Hash:   s.hash.Sum64(),
		})
	}

	sort.Slice(digests, func(i, j int) bool {
		return digests[i].Stream < digests[j].Stream
	})

	return digests
}

// Reset forgets every stream.
func (h *Hashers) Reset() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.streams = make(map[string]*stream)
}

// Diff lists the streams whose digests differ between a and b.
func Diff(a, b []Digest) []string {
	index := make(map[string]Digest, len(a))
	for _, d := range a {
		index[d.Stream] = d
	}

	var diff []string
	for _, d := range b {
		other, ok := index[d.Stream]
		delete(index, d.Stream)

		if !ok || other != d {
			diff = append(diff, d.Stream)
		}
	}

	for name := range index {
		diff = append(diff, name)
	}

	sort.Strings(diff)

	return diff
}
