package wasm

import (
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// DecodeModule decodes a WebAssembly binary module held in memory.
// On failure it returns a nil Module and a *errors.Error describing the
// first malformed construct.
func DecodeModule(data []byte) (*Module, error) {
	return decodeModule(binary.FromBytes(data))
}

// DecodeModuleFrom decodes the first size bytes of src, which is typically an
// *os.File.
func DecodeModuleFrom(src io.ReaderAt, size int64) (*Module, error) {
	return decodeModule(binary.New(src, size))
}

func decodeModule(r *binary.Reader) (*Module, error) {
	if err := readPreamble(r); err != nil {
		return nil, err
	}

	m := &Module{}
	var lastID SectionID

	// Running out of bytes at a section boundary is the only clean end.
	for r.Remaining() > 0 {
		hdr, err := readSectionHeader(r)
		if err != nil {
			return nil, err
		}

		if hdr.ID != SectionCustom {
			if hdr.ID <= lastID {
				return nil, errors.New(errors.PhaseDecode, errors.KindSectionOrder).
					At(hdr.Offset).
					Path(hdr.ID.String()).
					Value(hdr.ID).
					Detail("%s section after %s section", hdr.ID, lastID).
					Build()
			}
			lastID = hdr.ID
		}

		Logger().Debug("section",
			zap.Stringer("id", hdr.ID),
			zap.String("name", hdr.Name),
			zap.Int64("offset", hdr.Offset),
			zap.Uint32("size", hdr.Size))

		// the custom section name has already been consumed
		if err := decodeSection(r, m, hdr, int64(hdr.Size)-r.Since(hdr.Offset)); err != nil {
			return nil, errors.WithPath(err, hdr.ID.String())
		}

		if consumed := r.Since(hdr.Offset); consumed != int64(hdr.Size) {
			err := errors.SectionLength(hdr.Offset, int64(hdr.Size), consumed)
			err.Path = []string{hdr.ID.String()}
			return nil, err
		}
		m.Sections = append(m.Sections, hdr)
	}

	return m, nil
}

func readPreamble(r *binary.Reader) error {
	magic, err := r.ReadU32()
	if err != nil {
		return errors.WithPath(err, "preamble")
	}
	if magic != Magic {
		return errors.New(errors.PhaseDecode, errors.KindInvalidPreamble).
			At(0).
			Value(magic).
			Detail("magic 0x%08x, want 0x%08x", magic, Magic).
			Build()
	}

	version, err := r.ReadU32()
	if err != nil {
		return errors.WithPath(err, "preamble")
	}
	if version != Version {
		return errors.New(errors.PhaseDecode, errors.KindUnsupportedVersion).
			At(4).
			Value(version).
			Detail("version %d, want %d", version, Version).
			Build()
	}
	return nil
}

// readSectionHeader reads the id, the payload length and, for custom
// sections, the name. The name counts against the payload length.
func readSectionHeader(r *binary.Reader) (SectionHeader, error) {
	at := r.Position()
	raw, err := r.ReadVarUint7()
	if err != nil {
		return SectionHeader{}, err
	}
	id := SectionID(raw)
	if id >= sectionCount {
		return SectionHeader{}, errors.New(errors.PhaseDecode, errors.KindUnknownSection).
			At(at).
			Value(raw).
			Detail("section id %d", raw).
			Build()
	}

	size, err := r.ReadVarUint32()
	if err != nil {
		return SectionHeader{}, errors.WithPath(err, id.String())
	}
	hdr := SectionHeader{ID: id, Offset: r.Position(), Size: size}
	if id != SectionCustom {
		return hdr, nil
	}

	name, nameLen, err := r.ReadNameLen()
	if err != nil {
		return SectionHeader{}, errors.WithPath(err, id.String())
	}
	if nameLen > int64(size) {
		err := errors.SectionLength(hdr.Offset, int64(size), nameLen)
		err.Path = []string{id.String()}
		err.Detail += " (name alone)"
		return SectionHeader{}, err
	}
	hdr.Name = name
	return hdr, nil
}

// decodeSection routes a payload of length bytes to its decoder.
func decodeSection(r *binary.Reader, m *Module, hdr SectionHeader, length int64) error {
	switch hdr.ID {
	case SectionCustom:
		return decodeCustomSection(r, m, hdr, length)
	case SectionType:
		return decodeTypeSection(r, m)
	case SectionImport:
		return decodeImportSection(r, m)
	case SectionFunction:
		return decodeFunctionSection(r, m)
	case SectionTable:
		return decodeTableSection(r, m)
	case SectionMemory:
		return decodeMemorySection(r, m)
	case SectionGlobal:
		return decodeGlobalSection(r, m)
	case SectionExport:
		return decodeExportSection(r, m)
	case SectionStart:
		return decodeStartSection(r, m)
	case SectionElement:
		return decodeElementSection(r, m)
	case SectionCode:
		return decodeCodeSection(r, m)
	case SectionData:
		return decodeDataSection(r, m)
	}
	return errors.New(errors.PhaseDecode, errors.KindUnknownSection).At(hdr.Offset).Build()
}

func decodeCustomSection(r *binary.Reader, m *Module, hdr SectionHeader, length int64) error {
	if hdr.Name == NameSectionName {
		if m.Names != nil {
			return errors.New(errors.PhaseDecode, errors.KindNameSubsection).
				At(hdr.Offset).
				Path(NameSectionName).
				Detail("duplicate name section").
				Build()
		}
		names, err := decodeNames(r, length)
		if err != nil {
			return errors.WithPath(err, NameSectionName)
		}
		m.Names = names
		return nil
	}

	data, err := r.ReadBytes(length)
	if err != nil {
		return err
	}
	m.CustomSections = append(m.CustomSections, CustomSection{Name: hdr.Name, Data: data})
	return nil
}
