package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/internal/usecases"
	"contract-explorer.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type chainRepoStub struct {
	getActiveFn func(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Chain, int64, error)
	createFn    func(ctx context.Context, chain *entities.Chain) error
	deleteFn    func(ctx context.Context, id uuid.UUID) error
}

func (s *chainRepoStub) GetByID(context.Context, uuid.UUID) (*entities.Chain, error) {
	return nil, domainerrors.ErrNotFound
}

func (s *chainRepoStub) GetByChainID(context.Context, string) (*entities.Chain, error) {
	return nil, domainerrors.ErrNotFound
}

func (s *chainRepoStub) GetByCAIP2(context.Context, string) (*entities.Chain, error) {
	return nil, domainerrors.ErrNotFound
}

func (s *chainRepoStub) GetAll(context.Context) ([]*entities.Chain, error) {
	return []*entities.Chain{}, nil
}

func (s *chainRepoStub) GetActive(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Chain, int64, error) {
	if s.getActiveFn != nil {
		return s.getActiveFn(ctx, pagination)
	}
	return []*entities.Chain{}, 0, nil
}

func (s *chainRepoStub) Create(ctx context.Context, chain *entities.Chain) error {
	if s.createFn != nil {
		return s.createFn(ctx, chain)
	}
	return nil
}

func (s *chainRepoStub) Update(context.Context, *entities.Chain) error { return nil }

func (s *chainRepoStub) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

type contractRepoStub struct {
	createFn       func(ctx context.Context, contract *entities.SmartContract) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error)
	getByAddressFn func(ctx context.Context, chainID uuid.UUID, address string) (*entities.SmartContract, error)
	getByChainFn   func(ctx context.Context, chainID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error)
	getAllFn       func(ctx context.Context, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error)
	updateFn       func(ctx context.Context, contract *entities.SmartContract) error
	softDeleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *contractRepoStub) Create(ctx context.Context, contract *entities.SmartContract) error {
	if s.createFn != nil {
		return s.createFn(ctx, contract)
	}
	return nil
}

func (s *contractRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, domainerrors.ErrNotFound
}

func (s *contractRepoStub) GetByChainAndAddress(ctx context.Context, chainID uuid.UUID, address string) (*entities.SmartContract, error) {
	if s.getByAddressFn != nil {
		return s.getByAddressFn(ctx, chainID, address)
	}
	return nil, domainerrors.ErrNotFound
}

func (s *contractRepoStub) GetByChain(ctx context.Context, chainID uuid.UUID, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	if s.getByChainFn != nil {
		return s.getByChainFn(ctx, chainID, pagination)
	}
	return []*entities.SmartContract{}, 0, nil
}

func (s *contractRepoStub) GetAll(ctx context.Context, pagination utils.PaginationParams) ([]*entities.SmartContract, int64, error) {
	if s.getAllFn != nil {
		return s.getAllFn(ctx, pagination)
	}
	return []*entities.SmartContract{}, 0, nil
}

func (s *contractRepoStub) Update(ctx context.Context, contract *entities.SmartContract) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, contract)
	}
	return nil
}

func (s *contractRepoStub) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if s.softDeleteFn != nil {
		return s.softDeleteFn(ctx, id)
	}
	return nil
}

type chainLookupStub struct {
	chains map[string]*entities.Chain
	err    error
}

func (s *chainLookupStub) ResolveFromAny(_ context.Context, input string) (*entities.Chain, error) {
	if s.err != nil {
		return nil, s.err
	}
	if chain, ok := s.chains[input]; ok {
		return chain, nil
	}
	return nil, domainerrors.ErrUnsupportedChain
}

type contractReaderStub struct {
	listFn func(ctx context.Context, contractID uuid.UUID) (*usecases.ReadMethodsView, error)
	callFn func(ctx context.Context, contractID uuid.UUID, methodRef string, input usecases.CallReadMethodInput) (usecases.ReadMethodState, error)
}

func (s *contractReaderStub) ListReadMethods(ctx context.Context, contractID uuid.UUID) (*usecases.ReadMethodsView, error) {
	return s.listFn(ctx, contractID)
}

func (s *contractReaderStub) CallReadMethod(ctx context.Context, contractID uuid.UUID, methodRef string, input usecases.CallReadMethodInput) (usecases.ReadMethodState, error) {
	return s.callFn(ctx, contractID, methodRef, input)
}

type authenticatorStub struct {
	loginFn   func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	refreshFn func(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
}

func (s *authenticatorStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}

func (s *authenticatorStub) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	return s.refreshFn(ctx, refreshToken)
}
