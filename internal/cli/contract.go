package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovote/ovote/pkg/contract"
)

var (
	deployCmd = &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an oracle voting contract",
		RunE:  runDeploy,
	}

	terminateCmd = &cobra.Command{
		Use:   "terminate",
		Short: "Terminate a finished voting and reclaim its stake",
		RunE:  runTerminate,
	}
)

func init() {
	deployCmd.Flags().Uint8("code-hash", 2, "contract version byte")
	deployCmd.Flags().String("amount", "", "initial voting balance")
	deployCmd.Flags().StringArrayP("arg", "a", []string{}, "deploy argument as index:format:value. Can be used multiple times")

	terminateCmd.Flags().String("contract", "", "voting contract address")
	terminateCmd.Flags().StringArrayP("arg", "a", []string{}, "terminate argument as index:format:value. Can be used multiple times")
	terminateCmd.MarkFlagRequired("contract")
}

func runDeploy(cmd *cobra.Command, _ []string) error {
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

	codeHash, _ := cmd.Flags().GetUint8("code-hash")
	amountFlag, _ := cmd.Flags().GetString("amount")
	argFlags, _ := cmd.Flags().GetStringArray("arg")

	deployArgs, err := parseArgFlags(argFlags)
	if err != nil {
		return err
	}

	amount, err := parseAmount(amountFlag)
	if err != nil {
		return err
	}

	p := contract.DeployParams{
		From:     coinbase,
		CodeHash: codeHash,
		Amount:   amount,
		Args:     deployArgs,
	}

	r, err := e.asm.EstimateDeploy(ctx, p)
	if err != nil {
		return err
	}

	maxFee := contract.MaxFee(r.GasCost, r.TxFee)
	p.MaxFee = &maxFee

	key, err := e.key()
	if err != nil {
		return err
	}

	hash, err := e.asm.Deploy(ctx, key, p)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}

func runTerminate(cmd *cobra.Command, _ []string) error {
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

	contractHash, _ := cmd.Flags().GetString("contract")
	argFlags, _ := cmd.Flags().GetStringArray("arg")

	termArgs, err := parseArgFlags(argFlags)
	if err != nil {
		return err
	}

	p := contract.TerminateParams{
		From:     coinbase,
		Contract: contractHash,
		Args:     termArgs,
	}

	r, err := e.asm.EstimateTerminate(ctx, p)
	if err != nil {
		return err
	}

	maxFee := contract.MaxFee(r.GasCost, r.TxFee)
	p.MaxFee = &maxFee

	key, err := e.key()
	if err != nil {
		return err
	}

	hash, err := e.asm.Terminate(ctx, key, p)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}
