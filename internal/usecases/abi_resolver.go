package usecases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"contract-explorer.backend/internal/domain/entities"
	domainerrors "contract-explorer.backend/internal/domain/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/samber/lo"
)

// ABIResolver parses stored contract ABIs and caches the parsed form
type ABIResolver struct {
	abiCache sync.Map // map[string]*abi.ABI (key: contractID@updatedAt)
}

func NewABIResolver() *ABIResolver {
	return &ABIResolver{}
}

// Resolve parses the contract's ABI. Updating a contract changes its cache key.
func (r *ABIResolver) Resolve(contract *entities.SmartContract) (*abi.ABI, error) {
	if contract == nil || contract.ABI == nil {
		return nil, domainerrors.ErrInvalidABI
	}
	cacheKey := fmt.Sprintf("%s@%d", contract.ID, contract.UpdatedAt.UnixNano())

	if cached, ok := r.abiCache.Load(cacheKey); ok {
		if parsed, ok := cached.(*abi.ABI); ok {
			return parsed, nil
		}
	}

	rawABI, err := marshalABI(contract.ABI)
	if err != nil {
		return nil, err
	}
	parsed, err := abi.JSON(bytes.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidABI, err)
	}

	r.abiCache.Store(cacheKey, &parsed)
	return &parsed, nil
}

// FindMethod returns the go-ethereum method matching a canonical signature
func FindMethod(parsed *abi.ABI, signature string) (abi.Method, bool) {
	for _, m := range parsed.Methods {
		if m.Sig == signature {
			return m, true
		}
	}
	return abi.Method{}, false
}

type abiEntry struct {
	Type string `json:"type"`
	entities.MethodDescriptor
}

// ParseMethodDescriptors reads the function entries of a JSON ABI.
// Accepts the ABI array itself, its JSON text, or an artifact object with an "abi" key.
func ParseMethodDescriptors(rawABI interface{}) ([]entities.MethodDescriptor, error) {
	data, err := marshalABI(rawABI)
	if err != nil {
		return nil, err
	}

	var entries []abiEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidABI, err)
	}

	methods := lo.FilterMap(entries, func(e abiEntry, _ int) (entities.MethodDescriptor, bool) {
		// entries without a type are functions in legacy ABIs
		if e.Type != "" && e.Type != "function" {
			return entities.MethodDescriptor{}, false
		}
		if e.Inputs == nil {
			e.Inputs = []entities.MethodParam{}
		}
		if e.Outputs == nil {
			e.Outputs = []entities.MethodParam{}
		}
		return e.MethodDescriptor, e.Name != ""
	})
	return methods, nil
}

// NormalizeABI validates an ABI in any accepted shape and returns the bare
// JSON array, ready to be stored
func NormalizeABI(rawABI interface{}) (interface{}, error) {
	data, err := marshalABI(rawABI)
	if err != nil {
		return nil, err
	}
	if _, err := abi.JSON(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidABI, err)
	}
	var out []interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidABI, err)
	}
	return out, nil
}

// ReadMethods keeps only the methods callable through eth_call
func ReadMethods(methods []entities.MethodDescriptor) []entities.MethodDescriptor {
	return lo.Filter(methods, func(m entities.MethodDescriptor, _ int) bool {
		return m.IsReadOnly()
	})
}

// FindReadMethod looks a method up by canonical signature or, when unambiguous, by bare name
func FindReadMethod(methods []entities.MethodDescriptor, ref string) (entities.MethodDescriptor, error) {
	ref = strings.TrimSpace(ref)
	var candidates []entities.MethodDescriptor
	if strings.Contains(ref, "(") {
		candidates = lo.Filter(methods, func(m entities.MethodDescriptor, _ int) bool {
			return m.Signature() == strings.ReplaceAll(ref, " ", "")
		})
	} else {
		candidates = lo.Filter(methods, func(m entities.MethodDescriptor, _ int) bool {
			return m.Name == ref
		})
	}

	switch len(candidates) {
	case 0:
		return entities.MethodDescriptor{}, fmt.Errorf("%w: %s", domainerrors.ErrMethodNotFound, ref)
	case 1:
		if !candidates[0].IsReadOnly() {
			return entities.MethodDescriptor{}, fmt.Errorf("%w: %s", domainerrors.ErrMethodNotReadOnly, candidates[0].Signature())
		}
		return candidates[0], nil
	}

	readOnly := ReadMethods(candidates)
	if len(readOnly) == 1 {
		return readOnly[0], nil
	}
	sigs := lo.Map(candidates, func(m entities.MethodDescriptor, _ int) string { return m.Signature() })
	return entities.MethodDescriptor{}, fmt.Errorf("%w: %s is overloaded, use one of %s",
		domainerrors.ErrInvalidInput, ref, strings.Join(sigs, ", "))
}

func marshalABI(rawABI interface{}) ([]byte, error) {
	var data []byte
	switch v := rawABI.(type) {
	case nil:
		return nil, domainerrors.ErrInvalidABI
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidABI, err)
		}
		data = encoded
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil || len(artifact.ABI) == 0 {
			return nil, domainerrors.ErrInvalidABI
		}
		data = artifact.ABI
	}
	if len(data) == 0 || data[0] != '[' {
		return nil, domainerrors.ErrInvalidABI
	}
	return data, nil
}
