package usecases

import (
	"context"
	"errors"
	"sync"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"contract-explorer.backend/pkg/logger"
	"contract-explorer.backend/pkg/solidity"
	"go.uber.org/zap"
)

// GenericCallErrorMessage is shown when a failed call carries no reason
const GenericCallErrorMessage = "Error while calling the method"

// ContractReadCaller performs the actual read call against a node
type ContractReadCaller interface {
	CallContractReadMethod(
		ctx context.Context,
		contract *entities.SmartContract,
		method entities.MethodDescriptor,
		params []solidity.Value,
		options map[string]interface{},
	) ([]interface{}, error)
}

// CallResultEntry pairs one returned value with its output declaration
type CallResultEntry struct {
	Input     entities.MethodParam `json:"input"`
	Value     interface{}          `json:"value"`
	Formatted string               `json:"formatted,omitempty"`
}

// ReadMethodState is what a caller displays after a call
type ReadMethodState struct {
	Results []CallResultEntry `json:"results"`
	Error   string            `json:"error"`
}

// ReadMethodSession runs calls of one read method on one contract, one at a time
type ReadMethodSession struct {
	contract *entities.SmartContract
	method   entities.MethodDescriptor
	caller   ContractReadCaller

	mu       sync.Mutex
	inFlight bool
	state    ReadMethodState
}

func NewReadMethodSession(contract *entities.SmartContract, method entities.MethodDescriptor, caller ContractReadCaller) *ReadMethodSession {
	return &ReadMethodSession{
		contract: contract,
		method:   method,
		caller:   caller,
		state:    ReadMethodState{Results: []CallResultEntry{}},
	}
}

// Method returns the descriptor the session was built for
func (s *ReadMethodSession) Method() entities.MethodDescriptor {
	return s.method
}

// Call coerces rawInputs, invokes the read caller and records the outcome.
// A failed call is not an error: it ends up in State().Error. The only error
// returned is ErrCallInFlight, in which case the state is left untouched.
func (s *ReadMethodSession) Call(ctx context.Context, rawInputs []string, options map[string]interface{}) (ReadMethodState, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ReadMethodState{}, domainerrors.ErrCallInFlight
	}
	s.inFlight = true
	s.state = ReadMethodState{Results: []CallResultEntry{}}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	params := make([]solidity.Value, len(s.method.Inputs))
	for i, in := range s.method.Inputs {
		raw := ""
		if i < len(rawInputs) {
			raw = rawInputs[i]
		}
		params[i] = solidity.ProcessMethodCallParam(raw, in.Type)
	}

	results, err := s.invoke(ctx, params, solidity.Sanitize(options))

	next := ReadMethodState{Results: []CallResultEntry{}}
	if err != nil {
		next.Error = failureMessage(err)
		logger.Warn(ctx, "Read method call failed",
			zap.String("method", s.method.Signature()),
			zap.String("contract", s.contractAddress()),
			zap.Error(err),
		)
	} else {
		next.Results = pairResults(s.method.Outputs, results)
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	return cloneState(next), nil
}

// a panicking caller is reported like any other unreasoned failure
func (s *ReadMethodSession) invoke(ctx context.Context, params []solidity.Value, options map[string]interface{}) (results []interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = &callPanic{value: r}
		}
	}()
	return s.caller.CallContractReadMethod(ctx, s.contract, s.method, params, options)
}

// State returns a snapshot of the last call's outcome
func (s *ReadMethodSession) State() ReadMethodState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

func (s *ReadMethodSession) Results() []CallResultEntry {
	return s.State().Results
}

func (s *ReadMethodSession) Error() string {
	return s.State().Error
}

func (s *ReadMethodSession) contractAddress() string {
	if s.contract == nil {
		return ""
	}
	return s.contract.ContractAddress
}

func pairResults(outputs []entities.MethodParam, results []interface{}) []CallResultEntry {
	n := len(results)
	if len(outputs) < n {
		n = len(outputs)
	}
	entries := make([]CallResultEntry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, CallResultEntry{
			Input: entities.MethodParam{Name: outputs[i].Name, Type: outputs[i].Type},
			Value: solidity.FormatSolidityObject(results[i]),
		})
	}
	return entries
}

type reasoner interface {
	Reason() string
}

func failureMessage(err error) string {
	var r reasoner
	if errors.As(err, &r) && r.Reason() != "" {
		return r.Reason()
	}
	return GenericCallErrorMessage
}

func cloneState(st ReadMethodState) ReadMethodState {
	out := ReadMethodState{Error: st.Error, Results: make([]CallResultEntry, len(st.Results))}
	copy(out.Results, st.Results)
	return out
}
