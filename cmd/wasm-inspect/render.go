package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/wasm-inspect/wasm"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// sectionLabel names a header the way listings show it: custom sections
// carry their name.
func sectionLabel(h wasm.SectionHeader) string {
	if h.ID == wasm.SectionCustom {
		return fmt.Sprintf("custom %q", h.Name)
	}
	return h.ID.String()
}

func renderHeaders(w io.Writer, m *wasm.Module) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "section", "offset", "size")
	for i, h := range m.Sections {
		t.Row(strconv.Itoa(i), sectionLabel(h), fmt.Sprintf("0x%x", h.Offset), strconv.FormatUint(uint64(h.Size), 10))
	}
	fmt.Fprintln(w, t.Render())
}

func renderDump(w io.Writer, path string, m *wasm.Module, code bool) {
	fmt.Fprintf(w, "%s %s\n", headingStyle.Render(path), dimStyle.Render(fmt.Sprintf("(%d sections)", len(m.Sections))))
	renderHeaders(w, m)
	for i, h := range m.Sections {
		fmt.Fprintf(w, "\n%s\n", headingStyle.Render(sectionLabel(h)))
		for _, line := range sectionLines(m, i, code) {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// sectionLines describes the entries of the i-th section header.
func sectionLines(m *wasm.Module, i int, code bool) []string {
	h := m.Sections[i]
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	switch h.ID {
	case wasm.SectionCustom:
		if h.Name == wasm.NameSectionName {
			return nameLines(m)
		}
		if cs := customAt(m, i); cs != nil {
			add("%d byte(s)", len(cs.Data))
		}
	case wasm.SectionType:
		for j, t := range m.Types {
			add("type[%d] %s", j, t)
		}
	case wasm.SectionImport:
		for j, imp := range m.Imports {
			add("import[%d] %s.%s %s", j, imp.Module, imp.Name, importDesc(imp.Desc))
		}
	case wasm.SectionFunction:
		base := m.NumImported(wasm.KindFunc)
		for j, typeIdx := range m.Funcs {
			add("func[%d] type=%d%s", base+j, typeIdx, funcName(m, uint32(base+j)))
		}
	case wasm.SectionTable:
		for j, t := range m.Tables {
			add("table[%d] %s %s", j, t.ElemType, limits(t.Limits))
		}
	case wasm.SectionMemory:
		for j, mem := range m.Memories {
			add("memory[%d] %s", j, limits(mem.Limits))
		}
	case wasm.SectionGlobal:
		base := m.NumImported(wasm.KindGlobal)
		for j, g := range m.Globals {
			add("global[%d] %s init=(%s)", base+j, globalType(g.Type), g.Init)
		}
	case wasm.SectionExport:
		for j, exp := range m.Exports {
			add("export[%d] %q %s %d", j, exp.Name, exp.Kind, exp.Idx)
		}
	case wasm.SectionStart:
		if m.Start != nil {
			add("start func %d%s", *m.Start, funcName(m, *m.Start))
		}
	case wasm.SectionElement:
		for j, e := range m.Elements {
			add("elem[%d] table=%d offset=(%s) funcs=%v", j, e.TableIdx, e.Offset, e.FuncIdxs)
		}
	case wasm.SectionCode:
		base := m.NumImported(wasm.KindFunc)
		for j := range m.Code {
			body := &m.Code[j]
			funcIdx := uint32(base + j)
			add("code[%d] func=%d locals=%d instrs=%d size=%d%s",
				j, funcIdx, body.NumLocals(), len(body.Instructions), body.Size, funcName(m, funcIdx))
			if code {
				lines = append(lines, disassemble(body.Instructions)...)
			}
		}
	case wasm.SectionData:
		for j, d := range m.Data {
			add("data[%d] memory=%d offset=(%s) %d byte(s)", j, d.MemIdx, d.Offset, len(d.Init))
		}
	}
	return lines
}

// customAt maps the i-th header to its raw custom section. The name section
// is decoded and has no raw entry.
func customAt(m *wasm.Module, i int) *wasm.CustomSection {
	n := 0
	for _, h := range m.Sections[:i] {
		if h.ID == wasm.SectionCustom && h.Name != wasm.NameSectionName {
			n++
		}
	}
	if n >= len(m.CustomSections) {
		return nil
	}
	return &m.CustomSections[n]
}

func importDesc(d wasm.ImportDesc) string {
	switch d.Kind {
	case wasm.KindFunc:
		return fmt.Sprintf("func type=%d", d.TypeIdx)
	case wasm.KindTable:
		if d.Table != nil {
			return fmt.Sprintf("table %s %s", d.Table.ElemType, limits(d.Table.Limits))
		}
	case wasm.KindMemory:
		if d.Memory != nil {
			return "memory " + limits(d.Memory.Limits)
		}
	case wasm.KindGlobal:
		if d.Global != nil {
			return "global " + globalType(*d.Global)
		}
	}
	return d.Kind.String()
}

func limits(l wasm.Limits) string {
	if l.HasMax && l.Max != nil {
		return fmt.Sprintf("min=%d max=%d", l.Min, *l.Max)
	}
	return fmt.Sprintf("min=%d", l.Min)
}

func globalType(g wasm.GlobalType) string {
	if g.Mutable {
		return "mut " + g.ValType.String()
	}
	return g.ValType.String()
}

func funcName(m *wasm.Module, funcIdx uint32) string {
	if name, ok := m.Names.FunctionName(funcIdx); ok {
		return " " + nameStyle.Render("$"+name)
	}
	return ""
}

// disassemble indents instructions by block depth. Bodies exclude their
// final end, so every end here closes a block, loop or if.
func disassemble(instrs []wasm.Instruction) []string {
	lines := make([]string, 0, len(instrs))
	depth := 1
	for _, in := range instrs {
		if (in.Opcode == wasm.OpEnd || in.Opcode == wasm.OpElse) && depth > 1 {
			depth--
		}
		lines = append(lines, strings.Repeat("  ", depth)+in.String())
		switch in.Opcode {
		case wasm.OpBlock, wasm.OpLoop, wasm.OpIf, wasm.OpElse:
			depth++
		}
	}
	return lines
}

func nameLines(m *wasm.Module) []string {
	n := m.Names
	if n == nil {
		return []string{dimStyle.Render("no name section")}
	}

	var lines []string
	if n.Module != nil {
		lines = append(lines, "module "+nameStyle.Render(*n.Module))
	}
	for _, f := range n.Functions {
		lines = append(lines, fmt.Sprintf("func[%d] %s", f.Index, nameStyle.Render(f.Name)))
	}
	for _, ln := range n.Locals {
		owner := ""
		if name, ok := n.FunctionName(ln.FuncIdx); ok {
			owner = " " + nameStyle.Render(name)
		}
		lines = append(lines, fmt.Sprintf("locals of func[%d]%s", ln.FuncIdx, owner))
		for _, l := range ln.Names {
			lines = append(lines, fmt.Sprintf("  local[%d] %s", l.Index, nameStyle.Render(l.Name)))
		}
	}
	for _, o := range n.Others {
		lines = append(lines, fmt.Sprintf("subsection %d: %d byte(s)", o.ID, len(o.Data)))
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("empty name section"))
	}
	return lines
}

func renderNames(w io.Writer, m *wasm.Module) {
	for _, line := range nameLines(m) {
		fmt.Fprintln(w, line)
	}
}

// renderReport prints violations and reference disagreements and reports
// whether there were none.
func renderReport(w io.Writer, path string, rep wasm.Report, diffs []string) bool {
	if rep.Valid() && len(diffs) == 0 {
		fmt.Fprintf(w, "%s: %s\n", path, okStyle.Render("valid"))
		return true
	}
	for _, v := range rep.Violations {
		fmt.Fprintf(w, "%s: %s\n", path, errorStyle.Render(v.String()))
	}
	for _, d := range diffs {
		fmt.Fprintf(w, "%s: %s\n", path, errorStyle.Render("reference: "+d))
	}
	return false
}
