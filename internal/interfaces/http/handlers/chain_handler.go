package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/domain/repositories"
	"contract-explorer.backend/internal/interfaces/http/response"
	"contract-explorer.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/volatiletech/null/v8"
)

// ChainHandler handles chain endpoints
type ChainHandler struct {
	chainRepo repositories.ChainRepository
}

// NewChainHandler creates a new chain handler
func NewChainHandler(chainRepo repositories.ChainRepository) *ChainHandler {
	return &ChainHandler{chainRepo: chainRepo}
}

type chainResponse struct {
	ID          uuid.UUID   `json:"id"`
	ChainID     string      `json:"chainId"`
	CAIP2       string      `json:"caip2"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	ExplorerURL null.String `json:"explorerUrl"`
	IsActive    bool        `json:"isActive"`
}

func toChainResponse(chain *entities.Chain, _ int) chainResponse {
	return chainResponse{
		ID:          chain.ID,
		ChainID:     chain.ChainID,
		CAIP2:       chain.GetCAIP2ID(),
		Name:        chain.Name,
		Type:        string(chain.Type),
		ExplorerURL: chain.ExplorerURL,
		IsActive:    chain.IsActive,
	}
}

// ListChains lists active chains. RPC URLs are never exposed publicly.
// GET /api/v1/chains
func (h *ChainHandler) ListChains(c *gin.Context) {
	pagination := utils.ParsePaginationQuery(c.Query("page"), c.Query("limit"))

	chains, totalCount, err := h.chainRepo.GetActive(c.Request.Context(), pagination)
	if err != nil {
		response.Error(c, err)
		return
	}

	meta := utils.CalculateMeta(totalCount, pagination.Page, pagination.Limit)
	response.Paginated(c, http.StatusOK, lo.Map(chains, toChainResponse), meta)
}

// CreateChain registers a chain (Admin only)
// POST /api/v1/admin/chains
func (h *ChainHandler) CreateChain(c *gin.Context) {
	var input entities.CreateChainInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	chainID := strings.TrimSpace(input.ChainID)
	if strings.Contains(chainID, ":") && !strings.HasPrefix(chainID, "eip155:") {
		response.Error(c, domainerrors.BadRequest("only eip155 chains are supported"))
		return
	}
	chainID = strings.TrimPrefix(chainID, "eip155:")

	urls := append([]string{input.RPCURL}, input.RPCs...)
	for _, raw := range urls {
		if !validRPCURL(raw) {
			response.Error(c, domainerrors.BadRequest("invalid rpc url: "+raw))
			return
		}
	}

	chain := &entities.Chain{
		ChainID:  chainID,
		Name:     strings.TrimSpace(input.Name),
		Type:     entities.ChainTypeEVM,
		RPCURL:   strings.TrimSpace(input.RPCURL),
		IsActive: true,
		RPCs: lo.Map(lo.Uniq(input.RPCs), func(u string, i int) entities.ChainRPC {
			return entities.ChainRPC{URL: strings.TrimSpace(u), Priority: i + 1, IsActive: true}
		}),
	}
	if explorer := strings.TrimSpace(input.ExplorerURL); explorer != "" {
		chain.ExplorerURL = null.StringFrom(explorer)
	}

	if err := h.chainRepo.Create(c.Request.Context(), chain); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			response.Error(c, domainerrors.Conflict("Chain already registered"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"chain": chain})
}

// DeleteChain removes a chain (Admin only)
// DELETE /api/v1/admin/chains/:id
func (h *ChainHandler) DeleteChain(c *gin.Context) {
	id, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid chain ID"))
		return
	}

	if err := h.chainRepo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Chain not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Chain deleted"})
}

func validRPCURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
		return true
	}
	return false
}
