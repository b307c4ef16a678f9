// Package node wires every beacon-chain subsystem into one long-running
// process: persistence, the DA validator, fork choice, gossip admission
// (when a real verifier is supplied), and the pipeline orchestrator.
package node

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/orovalt/sentrybeacon/beacon-chain/archiver"
	"github.com/orovalt/sentrybeacon/beacon-chain/blockchain"
	"github.com/orovalt/sentrybeacon/beacon-chain/blockinput"
	"github.com/orovalt/sentrybeacon/beacon-chain/cache/seen"
	"github.com/orovalt/sentrybeacon/beacon-chain/das"
	"github.com/orovalt/sentrybeacon/beacon-chain/db"
	"github.com/orovalt/sentrybeacon/beacon-chain/db/filesystem"
	"github.com/orovalt/sentrybeacon/beacon-chain/db/kv"
	"github.com/orovalt/sentrybeacon/beacon-chain/execution"
	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice"
	"github.com/orovalt/sentrybeacon/beacon-chain/forkchoice/protoarray"
	"github.com/orovalt/sentrybeacon/beacon-chain/gossip"
	"github.com/orovalt/sentrybeacon/beacon-chain/sync/rpc"
	"github.com/orovalt/sentrybeacon/config/params"
	"github.com/orovalt/sentrybeacon/consensus-types/primitives"
	"github.com/orovalt/sentrybeacon/time/slots"
)

var log = logrus.WithField("prefix", "node")

// BeaconNode owns every long-lived subsystem and their lifecycle.
type BeaconNode struct {
	db           db.Database
	blobs        *filesystem.BlobStorage
	forkChoice   forkchoice.ForkChoicer
	caches       *seen.Caches
	registry     *blockinput.BlockInputRegistry
	availability *das.LazilyPersistentStore
	archiver     *archiver.Coordinator
	chain        *blockchain.Service
	clock        *slots.Clock
	execution    *execution.Client
	rangeHandler *rpc.BlocksByRangeHandler

	blockValidator *gossip.BlockValidator
	blobValidator  *gossip.BlobValidator

	sigVerifier       gossip.SignatureVerifier
	blobVerifier      gossip.BlobVerifier
	blobBatchVerifier das.BlobBatchVerifier
	transition        blockchain.StateTransition

	cancel context.CancelFunc
}

// finalizedSlotAdapter turns a ForkChoicer's epoch-granularity finalized
// checkpoint into the slot-granularity reading gossip.BlockValidator
// wants, without making the fork-choice interface itself slot-aware.
type finalizedSlotAdapter struct {
	fc forkchoice.ForkChoicer
}

func (a finalizedSlotAdapter) FinalizedSlot() primitives.Slot {
	cp := a.fc.FinalizedCheckpoint()
	if cp == nil {
		return 0
	}
	return slots.UnsafeEpochStart(cp.Epoch)
}

// New builds a BeaconNode from cliCtx's flags, applying any supplied
// Options. The execution engine dial is skipped when
// SkipExecutionFlag is set, for devnets and tests with no running
// execution client.
func New(cliCtx *cli.Context, opts ...Option) (*BeaconNode, error) {
	n := &BeaconNode{}
	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, errors.Wrap(err, "applying node option")
		}
	}
	if n.transition == nil {
		return nil, errors.New("no StateTransition supplied; construct New with node.WithStateTransition")
	}

	dataDir := cliCtx.String(DataDirFlag.Name)
	store, err := kv.NewKVStore(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "opening block/checkpoint store")
	}
	n.db = store

	blobStore, err := filesystem.NewBlobStorage(filesystem.WithBasePath(dataDir))
	if err != nil {
		return nil, errors.Wrap(err, "opening blob storage")
	}
	n.blobs = blobStore

	n.caches = seen.NewCaches()
	n.registry = blockinput.NewBlockInputRegistry()
	n.forkChoice = protoarray.New()
	n.clock = slots.NewClock(time.Unix(cliCtx.Int64(GenesisTimeFlag.Name), 0))

	if n.blobBatchVerifier != nil {
		n.availability = das.NewLazilyPersistentStore(n.blobs, n.blobBatchVerifier)
	}

	strategy, err := parseArchiveStrategy(cliCtx.String(ArchiveStrategyFlag.Name))
	if err != nil {
		return nil, err
	}
	n.archiver = archiver.NewCoordinator(n.db, n.registry, n.caches, strategy)
	n.rangeHandler = rpc.NewBlocksByRangeHandler(n.db)

	if !cliCtx.Bool(SkipExecutionFlag.Name) {
		endpoint := cliCtx.String(ExecutionEndpointFlag.Name)
		if endpoint == "" {
			return nil, errors.New("execution-endpoint is required unless test-skip-execution-dial is set")
		}
		secret, err := execution.ParseJWTSecret(cliCtx.String(JWTSecretFlag.Name))
		if err != nil {
			return nil, errors.Wrap(err, "parsing jwt secret")
		}
		client, err := execution.NewClient(context.Background(), endpoint, secret)
		if err != nil {
			return nil, errors.Wrap(err, "dialing execution engine")
		}
		n.execution = client
	}

	if n.sigVerifier != nil {
		n.blockValidator = gossip.NewBlockValidator(n.clock, n.caches.BlockProposers, n.sigVerifier, n.registry, finalizedSlotAdapter{fc: n.forkChoice})
	}
	if n.blobVerifier != nil {
		n.blobValidator = gossip.NewBlobValidator(n.clock, n.caches.BlobSidecars, n.blobVerifier, n.registry)
	}

	n.chain = blockchain.New(n.registry, n.forkChoice, n.transition, n.db, n.archiver, n.clock)

	return n, nil
}

func parseArchiveStrategy(name string) (archiver.Strategy, error) {
	switch name {
	case "", "frequency":
		return archiver.StrategyFrequency, nil
	case "differential":
		return archiver.StrategyDifferential, nil
	default:
		return 0, errors.Errorf("unknown archive strategy %q", name)
	}
}

// Start runs the per-slot maintenance loop until Close is called. Block
// admission itself is driven by the caller through ReceiveBlockInput/
// ReceiveBlock; Start only owns the slot ticker that keeps fork choice
// and the archive/prune sweep moving even when no new block arrives.
func (n *BeaconNode) Start() {
	log.Info("Starting beacon node")
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel

	ticker := time.NewTicker(time.Duration(params.BeaconConfig().SecondsPerSlot) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			currentSlot := n.clock.CurrentSlot()
			if err := n.chain.OnNewSlot(ctx, currentSlot); err != nil {
				log.WithError(err).Error("slot maintenance failed")
			}
		}
	}
}

// Close stops the maintenance loop and releases every owned resource.
func (n *BeaconNode) Close() {
	log.Info("Stopping beacon node")
	if n.cancel != nil {
		n.cancel()
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			log.WithError(err).Error("closing database")
		}
	}
}

// Chain exposes the pipeline orchestrator for callers driving block
// admission in from gossip/req-resp handlers.
func (n *BeaconNode) Chain() *blockchain.Service { return n.chain }

// BlockValidator exposes the beacon_block gossip validator, non-nil only
// when the node was constructed with WithSignatureVerifier.
func (n *BeaconNode) BlockValidator() *gossip.BlockValidator { return n.blockValidator }

// BlobValidator exposes the blob_sidecar gossip validator, non-nil only
// when the node was constructed with WithBlobVerifier.
func (n *BeaconNode) BlobValidator() *gossip.BlobValidator { return n.blobValidator }

// Availability exposes the DA validator, non-nil only when the node was
// constructed with WithBlobBatchVerifier.
func (n *BeaconNode) Availability() *das.LazilyPersistentStore { return n.availability }

// RangeHandler exposes the req/resp BlocksByRange handler.
func (n *BeaconNode) RangeHandler() *rpc.BlocksByRangeHandler { return n.rangeHandler }

// ForkChoice exposes the fork-choice engine.
func (n *BeaconNode) ForkChoice() forkchoice.ForkChoicer { return n.forkChoice }

// OnAttestation forwards a validator's LMD-GHOST vote into the pipeline
// orchestrator, for callers driving attestation gossip admission in.
func (n *BeaconNode) OnAttestation(validatorIndex uint64, targetRoot [32]byte, targetEpoch primitives.Epoch) {
	n.chain.OnAttestation(validatorIndex, targetRoot, targetEpoch)
}
