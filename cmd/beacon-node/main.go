// Command beacon-node runs the beacon chain client: block-input
// assembly, seen-cache dedup, fork choice, and the pipeline orchestrator
// tying them together.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/orovalt/sentrybeacon/beacon-chain/node"
)

func main() {
	app := cli.NewApp()
	app.Name = "beacon-node"
	app.Usage = "Ethereum consensus-layer beacon node"
	app.Flags = node.Flags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("beacon node exited with error")
	}
}

func run(cliCtx *cli.Context) error {
	n, err := node.New(cliCtx, stateTransitionOption())
	if err != nil {
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		n.Close()
	}()

	n.Start()
	return nil
}
