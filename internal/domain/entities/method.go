package entities

import "strings"

// MethodParam describes one ABI input or output slot
type MethodParam struct {
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	InternalType string        `json:"internalType,omitempty"`
	Components   []MethodParam `json:"components,omitempty"`
}

// MethodDescriptor is a single ABI function entry
type MethodDescriptor struct {
	Name            string        `json:"name"`
	Inputs          []MethodParam `json:"inputs"`
	Outputs         []MethodParam `json:"outputs"`
	StateMutability string        `json:"stateMutability,omitempty"`
	Constant        bool          `json:"constant,omitempty"`
}

// IsReadOnly reports whether the method can be executed with eth_call
func (m *MethodDescriptor) IsReadOnly() bool {
	switch m.StateMutability {
	case "view", "pure":
		return true
	case "":
		return m.Constant
	}
	return false
}

// Signature returns the canonical signature, e.g. "balanceOf(address)"
func (m *MethodDescriptor) Signature() string {
	types := make([]string, len(m.Inputs))
	for i, in := range m.Inputs {
		types[i] = in.canonicalType()
	}
	return m.Name + "(" + strings.Join(types, ",") + ")"
}

// tuples are spelled out as (t1,t2) in signatures
func (p MethodParam) canonicalType() string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return p.Type
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = c.canonicalType()
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}
