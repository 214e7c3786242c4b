package wasm

import (
	"strconv"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

func decodeTypeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Types = make([]FuncType, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		ft, err := readFuncType(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Types = append(m.Types, ft)
	}
	return nil
}

func readFuncType(r *binary.Reader) (FuncType, error) {
	at := r.Position()
	form, err := r.ReadVarUint7()
	if err != nil {
		return FuncType{}, err
	}
	if form != FuncTypeByte {
		return FuncType{}, errors.InvalidTypeTag(at, "func form", form)
	}

	paramCount, err := r.ReadVarUint32()
	if err != nil {
		return FuncType{}, err
	}
	ft := FuncType{Params: make([]ValType, 0, boundedCap(paramCount, r.Remaining()))}
	for i := uint32(0); i < paramCount; i++ {
		vt, err := readValType(r)
		if err != nil {
			return FuncType{}, err
		}
		ft.Params = append(ft.Params, vt)
	}

	hasResult, err := r.ReadVarUint1()
	if err != nil {
		return FuncType{}, err
	}
	if hasResult {
		vt, err := readValType(r)
		if err != nil {
			return FuncType{}, err
		}
		ft.Results = []ValType{vt}
	}
	return ft, nil
}

func readValType(r *binary.Reader) (ValType, error) {
	at := r.Position()
	tag, err := r.ReadVarUint7()
	if err != nil {
		return 0, err
	}
	vt := ValType(tag)
	if !vt.valid() {
		return 0, errors.InvalidTypeTag(at, "value type", tag)
	}
	return vt, nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	hasMax, err := r.ReadVarUint1()
	if err != nil {
		return Limits{}, err
	}
	initial, err := r.ReadVarUint32()
	if err != nil {
		return Limits{}, err
	}
	l := Limits{Min: initial, HasMax: hasMax}
	if hasMax {
		maximum, err := r.ReadVarUint32()
		if err != nil {
			return Limits{}, err
		}
		l.Max = &maximum
	}
	return l, nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	at := r.Position()
	tag, err := r.ReadVarUint7()
	if err != nil {
		return TableType{}, err
	}
	if ElemType(tag) != ElemAnyFunc {
		return TableType{}, errors.InvalidTypeTag(at, "element type", tag)
	}
	limits, err := readLimits(r)
	if err != nil {
		return TableType{}, err
	}
	return TableType{ElemType: ElemAnyFunc, Limits: limits}, nil
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	vt, err := readValType(r)
	if err != nil {
		return GlobalType{}, err
	}
	mutable, err := r.ReadVarUint1()
	if err != nil {
		return GlobalType{}, err
	}
	return GlobalType{ValType: vt, Mutable: mutable}, nil
}

func readExternalKind(r *binary.Reader) (ExternalKind, error) {
	at := r.Position()
	b, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	if ExternalKind(b) > KindGlobal {
		return 0, errors.InvalidTypeTag(at, "external kind", b)
	}
	return ExternalKind(b), nil
}

func decodeImportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Imports = make([]Import, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		imp, err := readImport(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Imports = append(m.Imports, imp)
	}
	return nil
}

func readImport(r *binary.Reader) (Import, error) {
	module, err := r.ReadName()
	if err != nil {
		return Import{}, err
	}
	name, err := r.ReadName()
	if err != nil {
		return Import{}, err
	}
	kind, err := readExternalKind(r)
	if err != nil {
		return Import{}, err
	}

	imp := Import{Module: module, Name: name, Desc: ImportDesc{Kind: kind}}
	switch kind {
	case KindFunc:
		imp.Desc.TypeIdx, err = r.ReadVarUint32()
	case KindTable:
		var tt TableType
		tt, err = readTableType(r)
		imp.Desc.Table = &tt
	case KindMemory:
		var l Limits
		l, err = readLimits(r)
		imp.Desc.Memory = &MemoryType{Limits: l}
	case KindGlobal:
		var gt GlobalType
		gt, err = readGlobalType(r)
		imp.Desc.Global = &gt
	}
	if err != nil {
		return Import{}, err
	}
	return imp, nil
}

func decodeFunctionSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Funcs = make([]uint32, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		typeIdx, err := r.ReadVarUint32()
		if err != nil {
			return entryErr(err, i)
		}
		m.Funcs = append(m.Funcs, typeIdx)
	}
	return nil
}

func decodeTableSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Tables = make([]TableType, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		tt, err := readTableType(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Tables = append(m.Tables, tt)
	}
	return nil
}

func decodeMemorySection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Memories = make([]MemoryType, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		l, err := readLimits(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Memories = append(m.Memories, MemoryType{Limits: l})
	}
	return nil
}

func decodeGlobalSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Globals = make([]Global, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		gt, err := readGlobalType(r)
		if err != nil {
			return entryErr(err, i)
		}
		init, err := decodeInitExpr(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Globals = append(m.Globals, Global{Type: gt, Init: init})
	}
	return nil
}

func decodeExportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Exports = make([]Export, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		exp, err := readExport(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Exports = append(m.Exports, exp)
	}
	return nil
}

func readExport(r *binary.Reader) (Export, error) {
	name, err := r.ReadName()
	if err != nil {
		return Export{}, err
	}
	kind, err := readExternalKind(r)
	if err != nil {
		return Export{}, err
	}
	idx, err := r.ReadVarUint32()
	if err != nil {
		return Export{}, err
	}
	return Export{Name: name, Kind: kind, Idx: idx}, nil
}

// The start section holds a single function index, not a vector.
func decodeStartSection(r *binary.Reader, m *Module) error {
	idx, err := r.ReadVarUint32()
	if err != nil {
		return err
	}
	m.Start = &idx
	return nil
}

func decodeElementSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Elements = make([]Element, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		elem, err := readElement(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Elements = append(m.Elements, elem)
	}
	return nil
}

func readElement(r *binary.Reader) (Element, error) {
	tableIdx, err := r.ReadVarUint32()
	if err != nil {
		return Element{}, err
	}
	offset, err := decodeInitExpr(r)
	if err != nil {
		return Element{}, err
	}
	n, err := r.ReadVarUint32()
	if err != nil {
		return Element{}, err
	}
	funcs := make([]uint32, 0, boundedCap(n, r.Remaining()))
	for j := uint32(0); j < n; j++ {
		idx, err := r.ReadVarUint32()
		if err != nil {
			return Element{}, err
		}
		funcs = append(funcs, idx)
	}
	return Element{TableIdx: tableIdx, Offset: offset, FuncIdxs: funcs}, nil
}

func decodeCodeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Code = make([]FuncBody, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		body, err := readFuncBody(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Code = append(m.Code, body)
	}
	return nil
}

// readFuncBody decodes one size-prefixed body. After the locals header the
// body holds exactly size-header-1 bytes of instructions and a final end.
func readFuncBody(r *binary.Reader) (FuncBody, error) {
	size, err := r.ReadVarUint32()
	if err != nil {
		return FuncBody{}, err
	}
	start := r.Position()
	if int64(size) > r.Remaining() {
		return FuncBody{}, errors.UnexpectedEOF(start, int64(size), r.Remaining())
	}
	body := FuncBody{Offset: start, Size: size}

	localCount, err := r.ReadVarUint32()
	if err != nil {
		return FuncBody{}, err
	}
	body.Locals = make([]LocalEntry, 0, boundedCap(localCount, r.Remaining()))
	for j := uint32(0); j < localCount; j++ {
		n, err := r.ReadVarUint32()
		if err != nil {
			return FuncBody{}, err
		}
		vt, err := readValType(r)
		if err != nil {
			return FuncBody{}, err
		}
		body.Locals = append(body.Locals, LocalEntry{Count: n, ValType: vt})
	}

	header := r.Since(start)
	if header+1 > int64(size) {
		return FuncBody{}, errors.New(errors.PhaseDecode, errors.KindMalformedBody).
			At(start).
			Detail("body size %d leaves no room for end after %d byte(s) of locals", size, header).
			Build()
	}

	end := start + int64(size) - 1
	body.Instructions = make([]Instruction, 0, boundedCap(uint32(end-r.Position()), r.Remaining())/2)
	for r.Position() < end {
		instr, err := decodeInstruction(r)
		if err != nil {
			return FuncBody{}, err
		}
		body.Instructions = append(body.Instructions, instr)
	}
	if r.Position() != end {
		return FuncBody{}, errors.New(errors.PhaseDecode, errors.KindMalformedBody).
			At(start).
			Detail("instructions overrun body by %d byte(s)", r.Position()-end).
			Build()
	}

	b, err := r.ReadByte()
	if err != nil {
		return FuncBody{}, err
	}
	if Opcode(b) != OpEnd {
		return FuncBody{}, errors.New(errors.PhaseDecode, errors.KindMalformedBody).
			At(end).
			Value(b).
			Detail("body ends with 0x%02x, want end", b).
			Build()
	}
	return body, nil
}

func decodeDataSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}

	m.Data = make([]DataSegment, 0, boundedCap(count, r.Remaining()))
	for i := uint32(0); i < count; i++ {
		seg, err := readDataSegment(r)
		if err != nil {
			return entryErr(err, i)
		}
		m.Data = append(m.Data, seg)
	}
	return nil
}

func readDataSegment(r *binary.Reader) (DataSegment, error) {
	memIdx, err := r.ReadVarUint32()
	if err != nil {
		return DataSegment{}, err
	}
	offset, err := decodeInitExpr(r)
	if err != nil {
		return DataSegment{}, err
	}
	n, err := r.ReadVarUint32()
	if err != nil {
		return DataSegment{}, err
	}
	init, err := r.ReadBytes(int64(n))
	if err != nil {
		return DataSegment{}, err
	}
	return DataSegment{MemIdx: memIdx, Offset: offset, Init: init}, nil
}

// entryErr tags err with the index of the section entry being decoded.
func entryErr(err error, i uint32) error {
	return errors.WithPath(err, strconv.FormatUint(uint64(i), 10))
}
