// Package rpc implements the req/resp side of range sync: choosing which
// peer-advertised head to sync toward, and serving chunked responses
// framed at each block's own fork.
package rpc

import "github.com/orovalt/sentrybeacon/consensus-types/primitives"

// Target is a peer-advertised chain head.
type Target struct {
	Slot primitives.Slot
	Root [32]byte
}

// SelectTarget picks the sync target from a batch of peer-advertised
// targets: highest slot wins; ties broken by the most commonly
// advertised (slot, root) pair; remaining ties broken by which
// (slot, root) pair was first seen in targets. Returns the zero Target
// and false if targets is empty.
func SelectTarget(targets []Target) (Target, bool) {
	if len(targets) == 0 {
		return Target{}, false
	}

	var best primitives.Slot
	for _, t := range targets {
		if t.Slot > best {
			best = t.Slot
		}
	}

	type count struct {
		target    Target
		n         int
		firstSeen int
	}
	counts := make(map[Target]*count)
	var order []Target
	for i, t := range targets {
		if t.Slot != best {
			continue
		}
		c, ok := counts[t]
		if !ok {
			c = &count{target: t, firstSeen: i}
			counts[t] = c
			order = append(order, t)
		}
		c.n++
	}

	var winner *count
	for _, t := range order {
		c := counts[t]
		if winner == nil || c.n > winner.n || (c.n == winner.n && c.firstSeen < winner.firstSeen) {
			winner = c
		}
	}
	return winner.target, true
}
