package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/interfaces/http/response"
	"contract-explorer.backend/internal/usecases"
	"contract-explorer.backend/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ChainLookup resolves a chain from a UUID, CAIP-2 id or bare chain id
type ChainLookup interface {
	ResolveFromAny(ctx context.Context, input string) (*entities.Chain, error)
}

// SmartContractHandler handles smart contract endpoints
type SmartContractHandler struct {
	repo   repositories.SmartContractRepository
	chains ChainLookup
}

// NewSmartContractHandler creates a new smart contract handler
func NewSmartContractHandler(repo repositories.SmartContractRepository, chains ChainLookup) *SmartContractHandler {
	return &SmartContractHandler{
		repo:   repo,
		chains: chains,
	}
}

func (h *SmartContractHandler) resolveChain(c *gin.Context, raw string) (*entities.Chain, bool) {
	chain, err := h.chains.ResolveFromAny(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.BadRequest("Invalid chain ID"))
			return nil, false
		}
		response.Error(c, err)
		return nil, false
	}
	return chain, true
}

func parseContractID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid contract ID"))
	}
	return id, ok
}

// CreateSmartContract registers a contract and its ABI (Admin only)
// POST /api/v1/admin/contracts
func (h *SmartContractHandler) CreateSmartContract(c *gin.Context) {
	var input entities.CreateSmartContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if !common.IsHexAddress(input.ContractAddress) {
		response.Error(c, domainerrors.BadRequest("Invalid contract address"))
		return
	}
	contractABI, err := usecases.NormalizeABI(input.ABI)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("contract ABI is not valid"))
		return
	}

	chain, ok := h.resolveChain(c, input.ChainID)
	if !ok {
		return
	}

	contract := &entities.SmartContract{
		Name:            strings.TrimSpace(input.Name),
		ChainUUID:       chain.ID,
		BlockchainID:    chain.GetCAIP2ID(),
		ContractAddress: common.HexToAddress(input.ContractAddress).Hex(),
		ABI:             contractABI,
		Tags:            lo.Uniq(lo.Compact(input.Tags)),
		IsActive:        true,
	}

	if err := h.repo.Create(c.Request.Context(), contract); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			response.Error(c, domainerrors.Conflict("Contract already registered on this chain"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"contract": contract})
}

// GetSmartContract gets a smart contract by ID
// GET /api/v1/contracts/:id
func (h *SmartContractHandler) GetSmartContract(c *gin.Context) {
	id, ok := parseContractID(c)
	if !ok {
		return
	}

	contract, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Contract not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

// ListSmartContracts lists contracts, optionally for one chain
// GET /api/v1/contracts?chainId=
func (h *SmartContractHandler) ListSmartContracts(c *gin.Context) {
	pagination := utils.ParsePaginationQuery(c.Query("page"), c.Query("limit"))

	var (
		contracts  []*entities.SmartContract
		totalCount int64
		err        error
	)
	if raw := strings.TrimSpace(c.Query("chainId")); raw != "" {
		chain, ok := h.resolveChain(c, raw)
		if !ok {
			return
		}
		contracts, totalCount, err = h.repo.GetByChain(c.Request.Context(), chain.ID, pagination)
	} else {
		contracts, totalCount, err = h.repo.GetAll(c.Request.Context(), pagination)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := utils.CalculateMeta(totalCount, pagination.Page, pagination.Limit)
	response.Paginated(c, http.StatusOK, contracts, meta)
}

// GetContractByChainAndAddress gets a contract by chain and address
// GET /api/v1/contracts/lookup?chainId=xxx&address=xxx
func (h *SmartContractHandler) GetContractByChainAndAddress(c *gin.Context) {
	rawChain := strings.TrimSpace(c.Query("chainId"))
	address := strings.TrimSpace(c.Query("address"))
	if rawChain == "" || address == "" {
		response.Error(c, domainerrors.BadRequest("chainId and address are required"))
		return
	}
	if !common.IsHexAddress(address) {
		response.Error(c, domainerrors.BadRequest("Invalid contract address"))
		return
	}

	chain, ok := h.resolveChain(c, rawChain)
	if !ok {
		return
	}

	contract, err := h.repo.GetByChainAndAddress(c.Request.Context(), chain.ID, address)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Contract not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

// UpdateSmartContract updates name, ABI, tags or the active flag (Admin only)
// PUT /api/v1/admin/contracts/:id
func (h *SmartContractHandler) UpdateSmartContract(c *gin.Context) {
	id, ok := parseContractID(c)
	if !ok {
		return
	}

	var input entities.UpdateSmartContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	contract, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Contract not found"))
			return
		}
		response.Error(c, err)
		return
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		contract.Name = name
	}
	if input.ABI != nil {
		contractABI, err := usecases.NormalizeABI(input.ABI)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("contract ABI is not valid"))
			return
		}
		contract.ABI = contractABI
	}
	if input.Tags != nil {
		contract.Tags = lo.Uniq(lo.Compact(input.Tags))
	}
	if input.IsActive != nil {
		contract.IsActive = *input.IsActive
	}

	if err := h.repo.Update(c.Request.Context(), contract); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Contract not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"contract": contract})
}

// DeleteSmartContract soft-deletes a contract (Admin only)
// DELETE /api/v1/admin/contracts/:id
func (h *SmartContractHandler) DeleteSmartContract(c *gin.Context) {
	id, ok := parseContractID(c)
	if !ok {
		return
	}

	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Contract not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Contract deleted"})
}
