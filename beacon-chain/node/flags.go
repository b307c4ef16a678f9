package node

import "github.com/urfave/cli/v2"

// Flags groups every cli.Flag the beacon node binary registers on its
// app, so cmd/beacon-node/main.go can pass them straight to cli.App.Flags
// without re-declaring them inline.
var Flags = []cli.Flag{
	DataDirFlag,
	GenesisTimeFlag,
	ExecutionEndpointFlag,
	JWTSecretFlag,
	ArchiveStrategyFlag,
	SkipExecutionFlag,
}

var DataDirFlag = &cli.StringFlag{
	Name:  "datadir",
	Usage: "Directory for the beacon node's block/checkpoint database and blob storage",
	Value: "beacon-data",
}

var GenesisTimeFlag = &cli.Int64Flag{
	Name:  "genesis-time",
	Usage: "Unix timestamp the slot/epoch clock is anchored to",
}

var ExecutionEndpointFlag = &cli.StringFlag{
	Name:  "execution-endpoint",
	Usage: "HTTP endpoint of the execution engine API (engine_newPayloadV3/engine_forkchoiceUpdatedV3)",
}

var JWTSecretFlag = &cli.StringFlag{
	Name:  "jwt-secret",
	Usage: "Hex-encoded 32-byte secret shared with the execution engine API",
}

var ArchiveStrategyFlag = &cli.StringFlag{
	Name:  "archive-strategy",
	Usage: "Cold-storage archive strategy on finalization: \"frequency\" or \"differential\"",
	Value: "frequency",
}

var SkipExecutionFlag = &cli.BoolFlag{
	Name:  "test-skip-execution-dial",
	Usage: "Skip dialing the execution engine API; for tests and devnets with no execution client",
}
