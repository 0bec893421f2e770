package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ovote/ovote/pkg/deferred"
	"github.com/ovote/ovote/pkg/oracle"
)

var (
	queueCmd = &cobra.Command{
		Use:   "queue",
		Short: "Deferred vote queue commands",
	}

	queue_listCmd = &cobra.Command{
		Use:   "list",
		Short: "List queued votes for the wallet address",
		RunE:  runQueueList,
	}

	queue_sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Submit queued votes whose block has been reached",
		RunE:  runQueueSweep,
	}
)

func init() {
	queue_sweepCmd.Flags().Bool("once", false, "run a single sweep instead of the block-interval loop")
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.client.Close()

	coinbase, err := e.coinbase()
	if err != nil {
		return err
	}

	s, err := e.voteStore()
	if err != nil {
		return err
	}
	defer s.Close()

	votes, err := s.ByCoinbase(ctx, coinbase)
	if err != nil {
		return err
	}

	head, err := e.client.LastBlock(ctx)
	if err != nil {
		return err
	}

	for _, v := range votes {
		fmt.Printf("%s\tcontract=%s\tblock=%d\tstate=%s\ttx=%s\n",
			v.ID, v.ContractHash, v.Block, v.State(head), v.TxHash)
	}

	return nil
}

func runQueueSweep(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.client.Close()

	coinbase, err := e.coinbase()
	if err != nil {
		return err
	}

	key, err := e.key()
	if err != nil {
		return err
	}

	s, err := e.voteStore()
	if err != nil {
		return err
	}
	defer s.Close()

	submitter := deferred.NewContractSubmitter(e.asm, key)
	machine := deferred.NewMachine(s, e.client, submitter,
		deferred.WithLocale(oracle.Locale(e.cfg.Locale())))

	sweeper := deferred.NewSweeper(s, machine, submitter, e.client, coinbase)

	once, _ := cmd.Flags().GetBool("once")
	if once {
		return sweeper.Sweep(ctx)
	}

	errCh := make(chan error)

	go func() {
		errCh <- sweeper.Run(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitExit(ctx):
		return nil
	}
}
