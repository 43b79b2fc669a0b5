package network

import (
	"net/url"
	"sync/atomic"
)

// Rotator hands out proxies in strict round-robin order. The cursor is
// shared by every attempt a session makes, so rotation is global across
// concurrent requests, and the proxy list is immutable after
// construction.
type Rotator struct {
	proxies []*url.URL
	cursor  atomic.Uint64
}

// NewRotator parses raw proxy URLs into a rotator. An empty list is
// valid: the rotator then has a single direct-connection slot.
func NewRotator(raw []string) (*Rotator, error) {
	rotator := &Rotator{}
	for _, proxy := range raw {
		u, err := url.Parse(proxy)
		if err != nil {
			return nil, err
		}
		rotator.proxies = append(rotator.proxies, u)
	}
	return rotator, nil
}

// Len reports the number of rotation slots, never less than one.
func (r *Rotator) Len() int {
	if len(r.proxies) == 0 {
		return 1
	}
	return len(r.proxies)
}

// Proxy returns the proxy configured for slot idx, nil for the direct
// slot.
func (r *Rotator) Proxy(idx int) *url.URL {
	if len(r.proxies) == 0 {
		return nil
	}
	return r.proxies[idx]
}

// Next advances the cursor and returns the next slot index with its
// proxy. Safe for concurrent use.
func (r *Rotator) Next() (int, *url.URL) {
	idx := int((r.cursor.Add(1) - 1) % uint64(r.Len()))
	return idx, r.Proxy(idx)
}
