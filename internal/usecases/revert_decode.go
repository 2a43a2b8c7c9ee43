package usecases

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// CallError is a failed read call whose cause can be shown to the caller
type CallError struct {
	Message string
	Err     error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CallError) Unwrap() error { return e.Err }

// Reason is the message displayed for the failure
func (e *CallError) Reason() string { return e.Message }

func newCallError(err error, format string, args ...interface{}) *CallError {
	return &CallError{Message: fmt.Sprintf(format, args...), Err: err}
}

// callPanic carries a recovered panic from a read caller. It has no reason.
type callPanic struct {
	value interface{}
}

func (p *callPanic) Error() string {
	return fmt.Sprintf("read caller panicked: %v", p.value)
}

// RevertDecoded describes revert data returned by a node
type RevertDecoded struct {
	RawHex   string `json:"rawHex"`
	Selector string `json:"selector,omitempty"`
	Name     string `json:"name,omitempty"`
	Message  string `json:"message,omitempty"`
}

var (
	errorStringSelector = selectorHex("Error(string)")
	panicSelector       = selectorHex("Panic(uint256)")

	revertHexPattern = regexp.MustCompile(`0x[0-9a-fA-F]{8,}`)
)

// decodeRevertDataFromError attempts to parse hex-encoded revert bytes from RPC errors.
// It supports rpc.DataError payloads and fallback extraction from error strings.
func decodeRevertDataFromError(err error) (RevertDecoded, bool) {
	if err == nil {
		return RevertDecoded{}, false
	}

	if data, ok := extractRevertHexFromDataError(err); ok {
		return decodeRevertData(data), true
	}

	if data, ok := extractRevertHexFromErrorString(err.Error()); ok {
		return decodeRevertData(data), true
	}

	return RevertDecoded{}, false
}

// revertCallError turns an eth_call failure into a reasoned CallError when
// the node reported a revert. Transport failures are returned unchanged.
func revertCallError(err error) error {
	if decoded, ok := decodeRevertDataFromError(err); ok {
		return &CallError{Message: decoded.Message, Err: err}
	}
	if isExecutionReverted(err) {
		return &CallError{Message: "execution reverted", Err: err}
	}
	return err
}

func isExecutionReverted(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

func extractRevertHexFromDataError(err error) ([]byte, bool) {
	type rpcDataError interface {
		ErrorData() interface{}
	}
	dataErr, ok := err.(rpcDataError)
	if !ok {
		return nil, false
	}
	return parseRevertBytesFromAny(dataErr.ErrorData())
}

func parseRevertBytesFromAny(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return parseHexBytes(v)
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, true
	case map[string]interface{}:
		if raw, ok := v["data"]; ok {
			return parseRevertBytesFromAny(raw)
		}
	}
	return nil, false
}

func extractRevertHexFromErrorString(message string) ([]byte, bool) {
	for _, candidate := range revertHexPattern.FindAllString(message, -1) {
		if data, ok := parseHexBytes(candidate); ok {
			return data, true
		}
	}
	return nil, false
}

func parseHexBytes(raw string) ([]byte, bool) {
	value := strings.TrimSpace(strings.TrimPrefix(raw, "0x"))
	if len(value) < 8 || len(value)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(value)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func decodeRevertData(data []byte) RevertDecoded {
	result := RevertDecoded{
		RawHex: "0x" + hex.EncodeToString(data),
	}
	if len(data) < 4 {
		result.Message = "execution reverted"
		return result
	}

	selector := "0x" + hex.EncodeToString(data[:4])
	result.Selector = selector

	switch selector {
	case errorStringSelector:
		stringType, err := abi.NewType("string", "", nil)
		if err == nil {
			outputs := abi.Arguments{{Type: stringType}}
			if values, unpackErr := outputs.Unpack(data[4:]); unpackErr == nil && len(values) == 1 {
				if msg, ok := values[0].(string); ok {
					result.Name = "Error"
					result.Message = msg
					return result
				}
			}
		}
	case panicSelector:
		if len(data) >= 36 {
			result.Name = "Panic"
			result.Message = fmt.Sprintf("panic code: %s", new(big.Int).SetBytes(data[4:36]).String())
			return result
		}
	}

	result.Message = "execution reverted (" + selector + ")"
	return result
}

func selectorHex(signature string) string {
	return "0x" + hex.EncodeToString(crypto.Keccak256([]byte(signature))[:4])
}
