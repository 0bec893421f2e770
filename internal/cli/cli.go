package cli

import (
	"context"
	"crypto/ecdsa"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ovote/ovote/internal/config"
	"github.com/ovote/ovote/internal/rpc"
	"github.com/ovote/ovote/internal/store"
	"github.com/ovote/ovote/pkg/args"
	"github.com/ovote/ovote/pkg/contract"
)

var (
	rootCmd = &cobra.Command{
		Use:   "ovote",
		Short: "Oracle voting transaction tooling",
	}
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	regCommands()

	return rootCmd.Execute()
}

type env struct {
	cfg    *config.Config
	client *rpc.Client
	asm    *contract.Assembler
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	client, err := rpc.Dial(ctx, cfg.Node().URL, cfg.Node().Key)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to node")
	}

	asm := contract.NewAssembler(client, contract.SecpSigner{}, client, client)

	return &env{cfg: cfg, client: client, asm: asm}, nil
}

func (e *env) key() (*ecdsa.PrivateKey, error) {
	k := strings.TrimPrefix(e.cfg.WalletKey(), "0x")
	if k == "" {
		return nil, errors.New("no wallet key configured")
	}

	key, err := crypto.HexToECDSA(k)
	if err != nil {
		return nil, errors.Wrap(err, "decoding wallet key")
	}

	return key, nil
}

func (e *env) coinbase() (string, error) {
	key, err := e.key()
	if err != nil {
		return "", err
	}

	return strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()), nil
}

func (e *env) voteStore() (*store.PebbleStore, error) {
	return store.Open(filepath.Join(e.cfg.DataDir(), "votes"))
}

// parseArg decodes an index:format:value flag, e.g. "0:byte:3" or
// "2:dna:1.5". The value may itself contain colons.
func parseArg(s string) (args.Argument, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return args.Argument{}, errors.Errorf("argument %q is not in index:format:value form", s)
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return args.Argument{}, errors.Errorf("argument index %q is not an integer", parts[0])
	}

	format, err := args.ParseFormat(parts[1])
	if err != nil {
		return args.Argument{}, err
	}

	return args.New(index, format, parts[2]), nil
}

func parseArgFlags(flags []string) ([]args.Argument, error) {
	out := make([]args.Argument, 0, len(flags))

	for _, f := range flags {
		a, err := parseArg(f)
		if err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, nil
}

func parseAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Errorf("amount %q is not a decimal", s)
	}

	return &d, nil
}

func waitExit(ctx context.Context) <-chan os.Signal {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	return sigs
}
