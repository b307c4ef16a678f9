package blockchain

import (
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
)

// OnAttestation forwards a validator's LMD-GHOST vote into fork choice.
// It does not itself trigger a head recomputation: the vote only takes
// effect on fork choice's node weights at the next UpdateBalances call.
// ReceiveBlock and the per-slot OnNewSlot tick call UpdateHead, which
// does not apply pending votes, and this package never calls
// UpdateBalances.
func (s *Service) OnAttestation(validatorIndex uint64, targetRoot [32]byte, targetEpoch primitives.Epoch) {
	s.forkChoice.OnAttestation(validatorIndex, targetRoot, targetEpoch)
}
