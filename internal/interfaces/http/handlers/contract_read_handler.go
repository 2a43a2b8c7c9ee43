package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/interfaces/http/response"
	"contract-explorer.backend/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContractReader is the read-method explorer behind the handler
type ContractReader interface {
	ListReadMethods(ctx context.Context, contractID uuid.UUID) (*usecases.ReadMethodsView, error)
	CallReadMethod(ctx context.Context, contractID uuid.UUID, methodRef string, input usecases.CallReadMethodInput) (usecases.ReadMethodState, error)
}

// ContractReadHandler exposes the read methods of registered contracts
type ContractReadHandler struct {
	reader ContractReader
}

func NewContractReadHandler(reader ContractReader) *ContractReadHandler {
	return &ContractReadHandler{reader: reader}
}

// ListReadMethods lists the view and pure methods of a contract
// GET /api/v1/contracts/:id/read-methods
func (h *ContractReadHandler) ListReadMethods(c *gin.Context) {
	id, ok := parseContractID(c)
	if !ok {
		return
	}

	view, err := h.reader.ListReadMethods(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// CallReadMethod runs one read call. A failed call still answers 200 with
// the error message in the body.
// POST /api/v1/contracts/:id/read-methods/:method/call
func (h *ContractReadHandler) CallReadMethod(c *gin.Context) {
	id, ok := parseContractID(c)
	if !ok {
		return
	}

	var input usecases.CallReadMethodInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if input.Decimals != nil && (*input.Decimals < 0 || *input.Decimals > 77) {
		response.Error(c, domainerrors.BadRequest("decimals must be between 0 and 77"))
		return
	}

	state, err := h.reader.CallReadMethod(c.Request.Context(), id, c.Param("method"), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}
