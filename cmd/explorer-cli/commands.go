package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"contract-explorer.backend/internal/domain/entities"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/infrastructure/blockchain"
	"contract-explorer.backend/internal/usecases"
	"contract-explorer.backend/pkg/crypto"
	"contract-explorer.backend/pkg/logger"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newReadCaller builds the caller used by the call command
var newReadCaller = func(rpcURL string, timeout time.Duration) (usecases.ContractReadCaller, func()) {
	factory := blockchain.NewClientFactory()
	caller := usecases.NewEVMReadCaller(
		staticChainRepository{chain: &entities.Chain{ID: uuid.Nil, Type: entities.ChainTypeEVM, IsActive: true}},
		factory,
		usecases.NewABIResolver(),
		usecases.WithDefaultRPCURL(rpcURL),
		usecases.WithCallTimeout(timeout),
	)
	return caller, factory.Close
}

// staticChainRepository serves a single chain with no RPC of its own, so
// every call goes to the caller's default RPC URL.
type staticChainRepository struct {
	repositories.ChainRepository
	chain *entities.Chain
}

func (r staticChainRepository) GetByID(context.Context, uuid.UUID) (*entities.Chain, error) {
	return r.chain, nil
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "explorer-cli",
		Short:         "Inspect and call read-only smart contract methods",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				l, err := zap.NewDevelopment()
				if err == nil {
					logger.SetLogger(l)
				}
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log call failures to stderr")

	root.AddCommand(newMethodsCmd(), newCallCmd(), newSelectorsCmd(), newHashPasswordCmd(), newGenSecretCmd())
	return root
}

func loadABIFile(path string) ([]entities.MethodDescriptor, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read ABI file: %w", err)
	}
	methods, err := usecases.ParseMethodDescriptors(string(raw))
	if err != nil {
		return nil, "", err
	}
	return methods, string(raw), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMethodsCmd() *cobra.Command {
	var abiPath string

	cmd := &cobra.Command{
		Use:   "methods",
		Short: "List the read methods declared in an ABI file",
		RunE: func(cmd *cobra.Command, args []string) error {
			methods, _, err := loadABIFile(abiPath)
			if err != nil {
				return err
			}
			for _, m := range usecases.ReadMethods(methods) {
				outputs := make([]string, 0, len(m.Outputs))
				for _, o := range m.Outputs {
					outputs = append(outputs, o.Type)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> (%s)\n", m.Signature(), strings.Join(outputs, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&abiPath, "abi", "", "Path to the ABI or build artifact JSON (required)")
	_ = cmd.MarkFlagRequired("abi")
	return cmd
}

func newCallCmd() *cobra.Command {
	var (
		abiPath  string
		address  string
		rpcURL   string
		from     string
		block    string
		decimals int32
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:     "call <method> [args...]",
		Short:   "Call a read method through eth_call",
		Example: "  explorer-cli call balanceOf 0x000000000000000000000000000000000000dEaD --abi token.json --address 0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913 --rpc https://mainnet.base.org --decimals 6",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(address) {
				return fmt.Errorf("invalid contract address %q", address)
			}
			if decimals < -1 || decimals > 77 {
				return fmt.Errorf("decimals must be between 0 and 77")
			}
			methods, rawABI, err := loadABIFile(abiPath)
			if err != nil {
				return err
			}
			method, err := usecases.FindReadMethod(methods, args[0])
			if err != nil {
				return err
			}

			contract := &entities.SmartContract{
				ID:              uuid.New(),
				ContractAddress: common.HexToAddress(address).Hex(),
				ABI:             rawABI,
				IsActive:        true,
				UpdatedAt:       time.Now(),
			}
			options := map[string]interface{}{}
			if from != "" {
				options["from"] = from
			}
			if block != "" {
				options["blockTag"] = block
			}

			caller, closeFn := newReadCaller(rpcURL, timeout)
			defer closeFn()

			state, err := usecases.NewReadMethodSession(contract, method, caller).Call(cmd.Context(), args[1:], options)
			if err != nil {
				return err
			}
			if decimals >= 0 {
				usecases.ApplyDecimals(state.Results, decimals)
			}
			if err := writeJSON(cmd.OutOrStdout(), state); err != nil {
				return err
			}
			if state.Error != "" {
				return fmt.Errorf("call failed: %s", state.Error)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&abiPath, "abi", "", "Path to the ABI or build artifact JSON (required)")
	cmd.Flags().StringVar(&address, "address", "", "Contract address (required)")
	cmd.Flags().StringVar(&rpcURL, "rpc", "", "RPC endpoint, http(s) or ws(s) (required)")
	cmd.Flags().StringVar(&from, "from", "", "Sender address for the call")
	cmd.Flags().StringVar(&block, "block", "", "Block tag or number, defaults to latest")
	cmd.Flags().Int32Var(&decimals, "decimals", -1, "Format integer results with this many decimals")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Call timeout")
	_ = cmd.MarkFlagRequired("abi")
	_ = cmd.MarkFlagRequired("address")
	_ = cmd.MarkFlagRequired("rpc")
	return cmd
}

func selector(signature string) string {
	return "0x" + hex.EncodeToString(ethcrypto.Keccak256([]byte(signature))[:4])
}

func newSelectorsCmd() *cobra.Command {
	var abiPath string

	cmd := &cobra.Command{
		Use:   "selectors [signature...]",
		Short: "Print 4-byte selectors for signatures or every function in an ABI file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigs := make([]string, 0, len(args))
			for _, a := range args {
				sigs = append(sigs, strings.ReplaceAll(strings.TrimSpace(a), " ", ""))
			}
			if abiPath != "" {
				methods, _, err := loadABIFile(abiPath)
				if err != nil {
					return err
				}
				for _, m := range methods {
					sigs = append(sigs, m.Signature())
				}
			}
			if len(sigs) == 0 {
				return fmt.Errorf("give at least one signature or --abi")
			}
			for _, sig := range lo.Uniq(sigs) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", sig, selector(sig))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&abiPath, "abi", "", "Path to the ABI or build artifact JSON")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := crypto.HashPasswordWithCost(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", crypto.DefaultCost, "bcrypt cost")
	return cmd
}

func newGenSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random hex secret for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < 16 {
				return fmt.Errorf("secret must be at least 16 bytes")
			}
			secret, err := crypto.GenerateRandomToken(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "Number of random bytes")
	return cmd
}
