package seen

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// maxSeenExecutionPayloadEnvelopes bounds SeenExecutionPayloadEnvelopes
// independently of the finalized-slot prune, per the open-question
// decision recorded in the design ledger: unbounded growth between rare
// finality events is otherwise possible under duress.
const maxSeenExecutionPayloadEnvelopes = 1 << 14

type envelopeEntry struct {
	slot primitives.Slot
}

// SeenExecutionPayloadEnvelopes dedups execution payload envelopes by
// blockRootHex, retained up to the finalized slot, with an additional
// bounded-count LRU cap.
type SeenExecutionPayloadEnvelopes struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, envelopeEntry]
	low   primitives.Slot
	hit   prometheus.Counter
	miss  prometheus.Counter
	evict prometheus.Counter
}

var (
	seenEnvelopesHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seen_execution_payload_envelopes_hit",
		Help: "The number of isKnown checks that found a prior envelope entry.",
	})
	seenEnvelopesMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seen_execution_payload_envelopes_miss",
		Help: "The number of isKnown checks that found no prior envelope entry.",
	})
	seenEnvelopesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seen_execution_payload_envelopes_evicted",
		Help: "The number of envelope entries evicted by the bounded-count cap.",
	})
)

// NewSeenExecutionPayloadEnvelopes returns a fresh SeenExecutionPayloadEnvelopes cache.
func NewSeenExecutionPayloadEnvelopes() *SeenExecutionPayloadEnvelopes {
	c, err := lru.New[string, envelopeEntry](maxSeenExecutionPayloadEnvelopes)
	if err != nil {
		// Only returns an error for a non-positive size, which is a
		// compile-time constant here.
		panic(err)
	}
	return &SeenExecutionPayloadEnvelopes{
		lru:   c,
		hit:   seenEnvelopesHit,
		miss:  seenEnvelopesMiss,
		evict: seenEnvelopesEvicted,
	}
}

// IsKnown reports whether blockRootHex already has a recorded envelope.
func (s *SeenExecutionPayloadEnvelopes) IsKnown(blockRootHex string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lru.Get(blockRootHex); ok {
		s.hit.Inc()
		return true
	}
	s.miss.Inc()
	return false
}

// Add records blockRootHex at slot, rejecting slots below the current
// finalized watermark.
func (s *SeenExecutionPayloadEnvelopes) Add(blockRootHex string, slot primitives.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot < s.low {
		return ErrBelowWatermark
	}
	if s.lru.Len() >= maxSeenExecutionPayloadEnvelopes {
		if _, ok := s.lru.Get(blockRootHex); !ok {
			s.evict.Inc()
		}
	}
	s.lru.Add(blockRootHex, envelopeEntry{slot: slot})
	return nil
}

// Prune advances the finalized-slot watermark and discards every entry
// now below it.
func (s *SeenExecutionPayloadEnvelopes) Prune(finalizedSlot primitives.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.low = finalizedSlot
	for _, root := range s.lru.Keys() {
		entry, ok := s.lru.Peek(root)
		if ok && entry.slot < finalizedSlot {
			s.lru.Remove(root)
		}
	}
}
