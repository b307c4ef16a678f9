package node

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logTest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/orovalt/sentrybeacon/beacon-chain/blockchain"
	"github.com/orovalt/sentrybeacon/consensus-types/blocks"
)

type stubTransition struct{}

func (stubTransition) Apply(_ context.Context, preState blockchain.State, _ blocks.SignedBeaconBlock, _ blockchain.TransitionOpts) (blockchain.TransitionResult, error) {
	return blockchain.TransitionResult{State: preState}, nil
}

func testContext(t *testing.T) *cli.Context {
	t.Helper()
	app := cli.NewApp()
	set := flag.NewFlagSet("test", 0)
	set.String(DataDirFlag.Name, t.TempDir(), "")
	set.Bool(SkipExecutionFlag.Name, true, "")
	return cli.NewContext(app, set, nil)
}

func TestNew_RequiresStateTransition(t *testing.T) {
	_, err := New(testContext(t))
	require.Error(t, err)
}

func TestNew_WiresCoreServices(t *testing.T) {
	n, err := New(testContext(t), WithStateTransition(stubTransition{}))
	require.NoError(t, err)
	require.NotNil(t, n.Chain())
	require.NotNil(t, n.ForkChoice())
	require.NotNil(t, n.RangeHandler())
	require.Nil(t, n.BlockValidator())
	n.Close()
}

func TestNode_StartAndClose(t *testing.T) {
	hook := logTest.NewGlobal()
	logrus.SetLevel(logrus.InfoLevel)

	n, err := New(testContext(t), WithStateTransition(stubTransition{}))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		n.Start()
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	n.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Close")
	}

	var sawStart, sawStop bool
	for _, e := range hook.AllEntries() {
		if e.Message == "Starting beacon node" {
			sawStart = true
		}
		if e.Message == "Stopping beacon node" {
			sawStop = true
		}
	}
	require.True(t, sawStart)
	require.True(t, sawStop)
}
