package wasm

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// Name subsection ids.
const (
	NameSubsectionModule   byte = 0
	NameSubsectionFunction byte = 1
	NameSubsectionLocal    byte = 2
)

// Names is the decoded "name" custom section. Fields for absent
// subsections are nil.
type Names struct {
	Module    *string
	Functions NameMap
	Locals    []LocalNames
	// Others holds subsections with unrecognized ids, in file order.
	Others []NameSubsection
}

// Naming associates an index with a name.
type Naming struct {
	Name  string
	Index uint32
}

// NameMap is an index to name map in encoded order.
type NameMap []Naming

// Lookup returns the name recorded for idx.
func (nm NameMap) Lookup(idx uint32) (string, bool) {
	for _, n := range nm {
		if n.Index == idx {
			return n.Name, true
		}
	}
	return "", false
}

// LocalNames holds the local names of one function.
type LocalNames struct {
	Names   NameMap
	FuncIdx uint32
}

// NameSubsection is an unrecognized subsection kept as raw bytes.
type NameSubsection struct {
	Data []byte
	ID   byte
}

// FunctionName returns the debug name of a function.
func (n *Names) FunctionName(funcIdx uint32) (string, bool) {
	if n == nil {
		return "", false
	}
	return n.Functions.Lookup(funcIdx)
}

// LocalName returns the debug name of a local within a function.
func (n *Names) LocalName(funcIdx, localIdx uint32) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, ln := range n.Locals {
		if ln.FuncIdx == funcIdx {
			return ln.Names.Lookup(localIdx)
		}
	}
	return "", false
}

// decodeNames scans length bytes of (id, size, payload) subsections.
// Module, function and local subsections may each appear once and only in
// that order; other ids may appear anywhere.
func decodeNames(r *binary.Reader, length int64) (*Names, error) {
	end := r.Position() + length
	names := &Names{}
	var seenModule, seenFunction, seenLocal bool

	for r.Position() < end {
		at := r.Position()
		id, err := r.ReadVarUint7()
		if err != nil {
			return nil, err
		}
		size, err := r.ReadVarUint32()
		if err != nil {
			return nil, err
		}
		start := r.Position()
		path := subsectionName(id)

		Logger().Debug("name subsection",
			zap.String("kind", path),
			zap.Int64("offset", start),
			zap.Uint32("size", size))

		switch id {
		case NameSubsectionModule:
			if seenModule || seenFunction || seenLocal {
				return nil, misordered(at, id)
			}
			seenModule = true
			name, err := r.ReadName()
			if err != nil {
				return nil, errors.WithPath(err, path)
			}
			names.Module = &name

		case NameSubsectionFunction:
			if seenFunction || seenLocal {
				return nil, misordered(at, id)
			}
			seenFunction = true
			nm, err := readNameMap(r)
			if err != nil {
				return nil, errors.WithPath(err, path)
			}
			names.Functions = nm

		case NameSubsectionLocal:
			if seenLocal {
				return nil, misordered(at, id)
			}
			seenLocal = true
			locals, err := readLocalNames(r)
			if err != nil {
				return nil, errors.WithPath(err, path)
			}
			names.Locals = locals

		default:
			data, err := r.ReadBytes(int64(size))
			if err != nil {
				return nil, errors.WithPath(err, path)
			}
			names.Others = append(names.Others, NameSubsection{ID: id, Data: data})
		}

		if consumed := r.Since(start); consumed != int64(size) {
			err := errors.SectionLength(start, int64(size), consumed)
			err.Path = []string{path}
			return nil, err
		}
	}
	return names, nil
}

func readNameMap(r *binary.Reader) (NameMap, error) {
	count, err := r.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	nm := make(NameMap, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		idx, err := r.ReadVarUint32()
		if err != nil {
			return nil, entryErr(err, i)
		}
		name, err := r.ReadName()
		if err != nil {
			return nil, entryErr(err, i)
		}
		nm = append(nm, Naming{Index: idx, Name: name})
	}
	return nm, nil
}

func readLocalNames(r *binary.Reader) ([]LocalNames, error) {
	count, err := r.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	locals := make([]LocalNames, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		funcIdx, err := r.ReadVarUint32()
		if err != nil {
			return nil, entryErr(err, i)
		}
		nm, err := readNameMap(r)
		if err != nil {
			return nil, entryErr(err, i)
		}
		locals = append(locals, LocalNames{FuncIdx: funcIdx, Names: nm})
	}
	return locals, nil
}

func subsectionName(id byte) string {
	switch id {
	case NameSubsectionModule:
		return "module"
	case NameSubsectionFunction:
		return "function"
	case NameSubsectionLocal:
		return "local"
	default:
		return "subsection"
	}
}

func misordered(at int64, id byte) error {
	return errors.New(errors.PhaseDecode, errors.KindNameSubsection).
		At(at).
		Path(subsectionName(id)).
		Value(id).
		Detail("%s subsection repeated or out of order", subsectionName(id)).
		Build()
}
