package usecases

import (
	"context"
	"errors"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/pkg/solidity"
	"github.com/google/uuid"
)

// CallReadMethodInput is a single read call request
type CallReadMethodInput struct {
	Inputs   []string               `json:"inputs"`
	Options  map[string]interface{} `json:"options"`
	Decimals *int32                 `json:"decimals,omitempty"`
}

// ReadMethodsView lists the callable methods of one contract
type ReadMethodsView struct {
	ContractID      uuid.UUID                   `json:"contractId"`
	ChainID         string                      `json:"chainId"`
	ContractAddress string                      `json:"contractAddress"`
	Methods         []entities.MethodDescriptor `json:"methods"`
}

// ContractReadUsecase serves the read-method explorer
type ContractReadUsecase struct {
	contractRepo   repositories.SmartContractRepository
	caller         ContractReadCaller
	defaultFrom    string
	publicExplorer bool
}

func NewContractReadUsecase(
	contractRepo repositories.SmartContractRepository,
	caller ContractReadCaller,
	defaultFrom string,
	publicExplorer bool,
) *ContractReadUsecase {
	return &ContractReadUsecase{
		contractRepo:   contractRepo,
		caller:         caller,
		defaultFrom:    strings.TrimSpace(defaultFrom),
		publicExplorer: publicExplorer,
	}
}

func (u *ContractReadUsecase) loadContract(ctx context.Context, contractID uuid.UUID) (*entities.SmartContract, error) {
	contract, err := u.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("contract not found")
		}
		return nil, err
	}
	if !contract.IsActive {
		return nil, domainerrors.NotFound("contract not found")
	}
	return contract, nil
}

// ListReadMethods returns the view and pure methods of a contract
func (u *ContractReadUsecase) ListReadMethods(ctx context.Context, contractID uuid.UUID) (*ReadMethodsView, error) {
	contract, err := u.loadContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	methods, err := ParseMethodDescriptors(contract.ABI)
	if err != nil {
		return nil, domainerrors.BadRequest("contract ABI is not valid")
	}
	return &ReadMethodsView{
		ContractID:      contract.ID,
		ChainID:         contract.BlockchainID,
		ContractAddress: contract.ContractAddress,
		Methods:         ReadMethods(methods),
	}, nil
}

// CallReadMethod runs one call of a read method. Lookup problems are returned
// as errors; a failed call is reported in the returned state.
func (u *ContractReadUsecase) CallReadMethod(
	ctx context.Context,
	contractID uuid.UUID,
	methodRef string,
	input CallReadMethodInput,
) (ReadMethodState, error) {
	contract, err := u.loadContract(ctx, contractID)
	if err != nil {
		return ReadMethodState{}, err
	}
	methods, err := ParseMethodDescriptors(contract.ABI)
	if err != nil {
		return ReadMethodState{}, domainerrors.BadRequest("contract ABI is not valid")
	}
	method, err := FindReadMethod(methods, methodRef)
	if err != nil {
		return ReadMethodState{}, err
	}

	session := NewReadMethodSession(contract, method, u.caller)
	state, err := session.Call(ctx, input.Inputs, u.callOptions(input.Options))
	if err != nil {
		return ReadMethodState{}, err
	}
	if input.Decimals != nil {
		ApplyDecimals(state.Results, *input.Decimals)
	}
	return state, nil
}

func (u *ContractReadUsecase) callOptions(in map[string]interface{}) map[string]interface{} {
	options := make(map[string]interface{}, len(in)+1)
	for k, v := range in {
		options[k] = v
	}
	if u.defaultFrom == "" {
		return options
	}
	if u.publicExplorer || options["from"] == nil || options["from"] == "" {
		options["from"] = u.defaultFrom
	}
	return options
}

// ApplyDecimals fills Formatted for scalar integer results. Addresses, bytes
// and list outputs are left untouched.
func ApplyDecimals(entries []CallResultEntry, decimals int32) {
	for i := range entries {
		t := entries[i].Input.Type
		if !strings.HasPrefix(t, "uint") && !strings.HasPrefix(t, "int") {
			continue
		}
		if solidity.IsArrayType(t) {
			continue
		}
		s, ok := entries[i].Value.(string)
		if !ok {
			continue
		}
		if formatted, ok := solidity.FormatUnits(s, decimals); ok {
			entries[i].Formatted = formatted
		}
	}
}
