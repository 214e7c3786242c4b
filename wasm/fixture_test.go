package wasm_test

import (
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

var preamble = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// module concatenates the preamble and the given encoded sections.
func module(sections ...[]byte) []byte {
	w := binary.NewWriter().WriteBytes(preamble)
	for _, s := range sections {
		w.WriteBytes(s)
	}
	return w.Bytes()
}

// section encodes a section with a correct payload length.
func section(id byte, payload []byte) []byte {
	return binary.NewWriter().Section(id, payload).Bytes()
}

// custom encodes a custom section; the name counts against the length.
func custom(name string, payload []byte) []byte {
	body := binary.NewWriter().WriteName(name).WriteBytes(payload).Bytes()
	return section(0, body)
}

// vec encodes a count followed by pre-encoded entries.
func vec(entries ...[]byte) []byte {
	w := binary.NewWriter().WriteU32(uint32(len(entries)))
	for _, e := range entries {
		w.WriteBytes(e)
	}
	return w.Bytes()
}

func cat(parts ...[]byte) []byte {
	w := binary.NewWriter()
	for _, p := range parts {
		w.WriteBytes(p)
	}
	return w.Bytes()
}

func u32(v uint32) []byte { return binary.NewWriter().WriteU32(v).Bytes() }

func name(s string) []byte { return binary.NewWriter().WriteName(s).Bytes() }

// funcType encodes func(params) -> results.
func funcType(params []byte, results ...byte) []byte {
	w := binary.NewWriter().Byte(0x60).Sized(params)
	w.WriteU32(uint32(len(results)))
	w.WriteBytes(results)
	return w.Bytes()
}

// body encodes a function body with the given local groups and code,
// which must include the final end.
func body(locals []byte, code ...byte) []byte {
	return binary.NewWriter().Sized(cat(locals, code)).Bytes()
}

// nameSub encodes one name subsection.
func nameSub(id byte, payload []byte) []byte {
	return binary.NewWriter().Byte(id).Sized(payload).Bytes()
}

// addModule is func(i32, i32) -> i32 exported as "add", with a name section.
func addModule() []byte {
	return module(
		section(1, vec(funcType([]byte{0x7f, 0x7f}, 0x7f))),
		section(3, vec(u32(0))),
		section(7, vec(cat(name("add"), []byte{0x00}, u32(0)))),
		section(10, vec(body(vec(), 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b))),
		custom("name", cat(
			nameSub(0, name("math")),
			nameSub(1, vec(cat(u32(0), name("add")))),
			nameSub(2, vec(cat(u32(0), vec(cat(u32(0), name("a")), cat(u32(1), name("b")))))),
		)),
	)
}
