package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ovote/ovote/pkg/args"
)

var (
	readCmd = &cobra.Command{
		Use:   "read",
		Short: "Read contract state without a transaction",
		RunE:  runRead,
	}
)

func init() {
	readCmd.Flags().String("contract", "", "voting contract address")
	readCmd.Flags().String("method", "", "readonly method to call. Omit to read a storage key instead")
	readCmd.Flags().String("key", "", "storage key to read when no method is given")
	readCmd.Flags().String("format", "hex", "result format")
	readCmd.Flags().StringArrayP("arg", "a", []string{}, "call argument as index:format:value. Can be used multiple times")
	readCmd.MarkFlagRequired("contract")
}

func runRead(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.client.Close()

	contractHash, _ := cmd.Flags().GetString("contract")
	method, _ := cmd.Flags().GetString("method")
	key, _ := cmd.Flags().GetString("key")
	format, _ := cmd.Flags().GetString("format")
	argFlags, _ := cmd.Flags().GetStringArray("arg")

	if method == "" {
		out, err := e.client.ReadContractData(ctx, contractHash, key, format)
		if err != nil {
			return err
		}

		fmt.Println(string(out))
		return nil
	}

	callArgs, err := parseArgFlags(argFlags)
	if err != nil {
		return err
	}

	slice, err := args.BuildSlice(callArgs)
	if err != nil {
		return err
	}

	out, err := e.client.Call(ctx, contractHash, method, format, slice)
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
