package anchor

import (
	"encoding/json"
	"fmt"
	"os"
)

// IDL is the subset of an Anchor IDL file the client reads.
type IDL struct {
	Version      string           `json:"version"`
	Name         string           `json:"name"`
	Instructions []IDLInstruction `json:"instructions"`
	Accounts     []IDLTypeDef     `json:"accounts,omitempty"`
	Errors       []IDLError       `json:"errors,omitempty"`
	Metadata     *IDLMetadata     `json:"metadata,omitempty"`
}

// IDLInstruction describes one program method.
type IDLInstruction struct {
	Name     string           `json:"name"`
	Accounts []IDLAccountItem `json:"accounts"`
	Args     []IDLField       `json:"args"`
}

// IDLAccountItem is a single account or a nested group of accounts.
type IDLAccountItem struct {
	Name     string           `json:"name"`
	IsMut    bool             `json:"isMut"`
	IsSigner bool             `json:"isSigner"`
	Accounts []IDLAccountItem `json:"accounts,omitempty"`
}

// IDLField is a named argument or struct field. Type is kept raw.
type IDLField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

// IDLTypeDef names an account type.
type IDLTypeDef struct {
	Name string `json:"name"`
}

// IDLError is a custom program error.
type IDLError struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg,omitempty"`
}

// IDLMetadata carries deploy information written by `anchor deploy`.
type IDLMetadata struct {
	Address string `json:"address"`
}

// LoadIDL reads an IDL JSON file.
func LoadIDL(path string) (*IDL, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idl IDL
	if err := json.Unmarshal(b, &idl); err != nil {
		return nil, fmt.Errorf("parse idl %q: %w", path, err)
	}
	return &idl, nil
}

// Instruction finds a method by any accepted spelling of its name.
func (idl *IDL) Instruction(name string) (IDLInstruction, bool) {
	key := normalizeName(name)
	for _, ix := range idl.Instructions {
		if normalizeName(ix.Name) == key {
			return ix, true
		}
	}
	return IDLInstruction{}, false
}

// AccountCount returns the number of accounts after flattening groups.
func (ix IDLInstruction) AccountCount() int {
	return countAccounts(ix.Accounts)
}

func countAccounts(items []IDLAccountItem) int {
	n := 0
	for _, it := range items {
		if len(it.Accounts) > 0 {
			n += countAccounts(it.Accounts)
			continue
		}
		n++
	}
	return n
}

// ErrorByCode looks up a custom program error.
func (idl *IDL) ErrorByCode(code uint32) (IDLError, bool) {
	for _, e := range idl.Errors {
		if e.Code == code {
			return e, true
		}
	}
	return IDLError{}, false
}
