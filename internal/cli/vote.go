package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/ovote/ovote/pkg/contract"
	"github.com/ovote/ovote/pkg/deferred"
)

var (
	voteCmd = &cobra.Command{
		Use:   "vote",
		Short: "Oracle voting commands",
	}

	vote_sendCmd = &cobra.Command{
		Use:   "send",
		Short: "Send a vote, or queue it until its open block",
		RunE:  runVoteSend,
	}

	vote_estimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Dry-run a vote without broadcasting",
		RunE:  runVoteEstimate,
	}
)

func init() {
	for _, c := range []*cobra.Command{vote_sendCmd, vote_estimateCmd} {
		c.Flags().String("contract", "", "voting contract address")
		c.Flags().String("amount", "", "coins to attach")
		c.Flags().StringArrayP("arg", "a", []string{}, "call argument as index:format:value. Can be used multiple times")
		c.MarkFlagRequired("contract")
	}

	vote_sendCmd.Flags().Uint64("at-block", 0, "queue the vote until this block is reached")
}

func voteFromFlags(cmd *cobra.Command, coinbase string) (*deferred.Vote, error) {
	contractHash, _ := cmd.Flags().GetString("contract")
	amount, _ := cmd.Flags().GetString("amount")
	argFlags, _ := cmd.Flags().GetStringArray("arg")
	block, _ := cmd.Flags().GetUint64("at-block")

	voteArgs, err := parseArgFlags(argFlags)
	if err != nil {
		return nil, err
	}

	id := hexutil.Encode(crypto.Keccak256(
		[]byte(fmt.Sprintf("%s|%s|%d|%d", coinbase, contractHash, block, time.Now().UnixNano()))))

	return &deferred.Vote{
		ID:           id,
		Coinbase:     coinbase,
		ContractHash: contractHash,
		Amount:       amount,
		Args:         voteArgs,
		Block:        block,
	}, nil
}

func runVoteSend(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
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

	v, err := voteFromFlags(cmd, coinbase)
	if err != nil {
		return err
	}

	head, err := e.client.LastBlock(ctx)
	if err != nil {
		return err
	}

	if v.Block > head {
		s, err := e.voteStore()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Put(ctx, v); err != nil {
			return err
		}

		fmt.Printf("vote queued until block %d (current head %d)\n", v.Block, head)
		return nil
	}

	key, err := e.key()
	if err != nil {
		return err
	}

	hash, err := deferred.NewContractSubmitter(e.asm, key).SubmitVote(ctx, v)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}

func runVoteEstimate(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
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

	v, err := voteFromFlags(cmd, coinbase)
	if err != nil {
		return err
	}

	amount, err := parseAmount(v.Amount)
	if err != nil {
		return err
	}

	r, err := e.asm.EstimateCall(ctx, contract.CallParams{
		From:     coinbase,
		Contract: v.ContractHash,
		Method:   "sendVote",
		Amount:   amount,
		Args:     v.Args,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
