package blockchain

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/orovalt/sentrybeacon/beacon-chain/archiver"
	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/db"
	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	forkchoicetypes "github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/types"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

var log = logrus.WithField("prefix", "blockchain")

// Service is the Pipeline Orchestrator: it waits on BlockInputRegistry
// completions, runs state-transition, inserts the result into fork
// choice, updates the head, persists the block, and delegates
// finality-triggered archival/pruning to the Coordinator.
type Service struct {
	registry   *blockinput.BlockInputRegistry
	forkChoice forkchoice.ForkChoicer
	transition StateTransition
	db         db.Database
	archiver   *archiver.Coordinator
	clock      *slots.Clock

	statesMu sync.RWMutex
	states   map[[32]byte]stateEntry

	finalizedMu   sync.Mutex
	lastFinalized *forkchoicetypes.Checkpoint
}

type stateEntry struct {
	state State
	slot  primitives.Slot
}

// New wires a Service over its collaborators. Call SetGenesis before
// driving any blocks through it.
func New(
	registry *blockinput.BlockInputRegistry,
	fc forkchoice.ForkChoicer,
	transition StateTransition,
	store db.Database,
	coordinator *archiver.Coordinator,
	clock *slots.Clock,
) *Service {
	return &Service{
		registry:   registry,
		forkChoice: fc,
		transition: transition,
		db:         store,
		archiver:   coordinator,
		clock:      clock,
		states:     make(map[[32]byte]stateEntry),
	}
}

// SetGenesis seeds the state cache with the genesis block's root, slot
// and state, so the first real block has a preState to transition from.
// The caller is responsible for inserting the genesis block into fork
// choice separately.
func (s *Service) SetGenesis(root [32]byte, slot primitives.Slot, state State) {
	s.statesMu.Lock()
	s.states[root] = stateEntry{state: state, slot: slot}
	s.statesMu.Unlock()
}

// stateByRoot returns the cached post-state for root, if any.
func (s *Service) stateByRoot(root [32]byte) (State, bool) {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()
	e, ok := s.states[root]
	return e.state, ok
}

// saveState caches root's post-state at slot.
func (s *Service) saveState(root [32]byte, slot primitives.Slot, state State) {
	s.statesMu.Lock()
	s.states[root] = stateEntry{state: state, slot: slot}
	s.statesMu.Unlock()
}

// pruneStatesBelow drops every cached state strictly below finalizedSlot:
// once a block is finalized, fork choice will never transition from any
// sibling of its ancestors again, so their cached post-states become
// unreachable. States at finalizedSlot itself are kept.
func (s *Service) pruneStatesBelow(finalizedSlot primitives.Slot) int {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	pruned := 0
	for root, e := range s.states {
		if e.slot < finalizedSlot {
			delete(s.states, root)
			pruned++
		}
	}
	return pruned
}
