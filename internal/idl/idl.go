// Package idl loads Anchor interface descriptions into an explicit structure:
// instruction name to accounts and args, account name to discriminator and
// fields, error code to message. Both the current (0.30+) and the legacy IDL
// layouts are accepted.
package idl

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/mr-tron/base58"
)

// DiscriminatorSize is the length of Anchor account and instruction tags
const DiscriminatorSize = 8

type Discriminator [DiscriminatorSize]byte

// IDL is a normalized interface description
type IDL struct {
	Address      string
	Name         string
	Version      string
	Instructions []Instruction
	Accounts     []Account
	Errors       []Error
	Types        []TypeDef
}

type Instruction struct {
	Name          string
	Discriminator Discriminator
	Accounts      []AccountMeta
	Args          []Field
}

type AccountMeta struct {
	Name     string
	Writable bool
	Signer   bool
}

type Account struct {
	Name          string
	Discriminator Discriminator
}

type Error struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg"`
}

// Field keeps the raw type expression; it is either a string ("u64") or an
// object ({"option":"i64"}, {"defined":{"name":"X"}}).
type Field struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type TypeDef struct {
	Name   string
	Kind   string
	Fields []Field
}

// Load reads an IDL JSON file
func Load(path string) (*IDL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read idl: %w", err)
	}
	return Parse(data)
}

// raw mirrors both IDL layouts; legacy-only keys are marked.
type raw struct {
	Address  string `json:"address"`
	Name     string `json:"name"`    // legacy
	Version  string `json:"version"` // legacy
	Metadata struct {
		Name    string `json:"name"`
		Version string `json:"version"`
		Address string `json:"address"` // legacy
	} `json:"metadata"`
	Instructions []struct {
		Name     string  `json:"name"`
		RawDisc  []int   `json:"discriminator"`
		Accounts []rawAM `json:"accounts"`
		Args     []Field `json:"args"`
	} `json:"instructions"`
	Accounts []struct {
		Name    string   `json:"name"`
		RawDisc []int    `json:"discriminator"`
		Type    *rawType `json:"type"` // legacy
	} `json:"accounts"`
	Errors []Error `json:"errors"`
	Types  []struct {
		Name string  `json:"name"`
		Type rawType `json:"type"`
	} `json:"types"`
}

type rawAM struct {
	Name     string `json:"name"`
	Writable bool   `json:"writable"`
	Signer   bool   `json:"signer"`
	IsMut    bool   `json:"isMut"`    // legacy
	IsSigner bool   `json:"isSigner"` // legacy
}

type rawType struct {
	Kind   string  `json:"kind"`
	Fields []Field `json:"fields"`
}

// Parse decodes IDL JSON
func Parse(data []byte) (*IDL, error) {
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse idl: %w", err)
	}

	out := &IDL{
		Address: firstNonEmpty(r.Address, r.Metadata.Address),
		Name:    firstNonEmpty(r.Metadata.Name, r.Name),
		Version: firstNonEmpty(r.Metadata.Version, r.Version),
		Errors:  r.Errors,
	}
	if out.Name == "" {
		return nil, errors.New("idl has no program name")
	}
	if out.Address != "" {
		if b, err := base58.Decode(out.Address); err != nil || len(b) != 32 {
			return nil, fmt.Errorf("idl address %q is not a public key", out.Address)
		}
	}

	for _, ri := range r.Instructions {
		ix := Instruction{Name: ri.Name, Args: ri.Args}
		if len(ri.RawDisc) > 0 {
			d, err := toDiscriminator(ri.RawDisc)
			if err != nil {
				return nil, fmt.Errorf("instruction %s: %w", ri.Name, err)
			}
			ix.Discriminator = d
		} else {
			ix.Discriminator = InstructionDiscriminator(ri.Name)
		}
		for _, a := range ri.Accounts {
			ix.Accounts = append(ix.Accounts, AccountMeta{
				Name:     a.Name,
				Writable: a.Writable || a.IsMut,
				Signer:   a.Signer || a.IsSigner,
			})
		}
		out.Instructions = append(out.Instructions, ix)
	}

	for _, ra := range r.Accounts {
		acc := Account{Name: ra.Name}
		if len(ra.RawDisc) > 0 {
			d, err := toDiscriminator(ra.RawDisc)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", ra.Name, err)
			}
			acc.Discriminator = d
		} else {
			acc.Discriminator = AccountDiscriminator(ra.Name)
		}
		out.Accounts = append(out.Accounts, acc)

		// Legacy IDLs inline the account layout
		if ra.Type != nil {
			out.Types = append(out.Types, TypeDef{Name: ra.Name, Kind: ra.Type.Kind, Fields: ra.Type.Fields})
		}
	}

	for _, rt := range r.Types {
		out.Types = append(out.Types, TypeDef{Name: rt.Name, Kind: rt.Type.Kind, Fields: rt.Type.Fields})
	}

	return out, nil
}

// Instruction looks up an instruction by name; both snake_case and camelCase match
func (d *IDL) Instruction(name string) (*Instruction, bool) {
	want := ToSnake(name)
	for i := range d.Instructions {
		if ToSnake(d.Instructions[i].Name) == want {
			return &d.Instructions[i], true
		}
	}
	return nil, false
}

// Account looks up an account definition by name
func (d *IDL) Account(name string) (*Account, bool) {
	for i := range d.Accounts {
		if d.Accounts[i].Name == name {
			return &d.Accounts[i], true
		}
	}
	return nil, false
}

// Type looks up a type definition by name
func (d *IDL) Type(name string) (*TypeDef, bool) {
	for i := range d.Types {
		if d.Types[i].Name == name {
			return &d.Types[i], true
		}
	}
	return nil, false
}

// Error looks up a program error by code
func (d *IDL) Error(code uint32) (*Error, bool) {
	for i := range d.Errors {
		if d.Errors[i].Code == code {
			return &d.Errors[i], true
		}
	}
	return nil, false
}

// AccountDiscriminator is sha256("account:<Name>")[:8]
func AccountDiscriminator(name string) Discriminator {
	return hashPrefix("account:" + name)
}

// InstructionDiscriminator is sha256("global:<snake_name>")[:8]
func InstructionDiscriminator(name string) Discriminator {
	return hashPrefix("global:" + ToSnake(name))
}

func hashPrefix(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

func toDiscriminator(vals []int) (Discriminator, error) {
	var d Discriminator
	if len(vals) != DiscriminatorSize {
		return d, fmt.Errorf("discriminator has %d bytes, want %d", len(vals), DiscriminatorSize)
	}
	for i, v := range vals {
		if v < 0 || v > 255 {
			return d, fmt.Errorf("discriminator byte %d out of range", v)
		}
		d[i] = byte(v)
	}
	return d, nil
}

// ToSnake converts initPool / InitPool to init_pool
func ToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
