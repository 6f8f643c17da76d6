package hotreload

// WebAssembly binary constants used by the unit image encoder.
const (
	wasmMagic   = "\x00asm"
	wasmVersion = "\x01\x00\x00\x00"

	sectionType     byte = 1
	sectionFunction byte = 3
	sectionMemory   byte = 5
	sectionExport   byte = 7
	sectionCode     byte = 10
	sectionData     byte = 11

	typeFunc   byte = 0x60
	valTypeI64 byte = 0x7e

	exportFunc   byte = 0x00
	exportMemory byte = 0x02

	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opEnd      byte = 0x0b

	wasmPageSize = 65536

	// manifestOffset is where the manifest is placed in linear memory.
	manifestOffset = 1024
)

// EncodeImage builds a minimal unit image for descs: a WebAssembly module
// that exports MemoryExport and an EntryPoint returning the manifest. It is
// what `hearth pack` writes, and what units built by other toolchains must
// look like from the outside.
func EncodeImage(descs []Descriptor) ([]byte, error) {
	m, err := EncodeManifest(descs)
	if err != nil {
		return nil, err
	}
	return encodeImage(m), nil
}

// encodeImage wraps an already encoded manifest.
func encodeImage(manifest []byte) []byte {
	pages := (manifestOffset + len(manifest) + wasmPageSize - 1) / wasmPageSize

	b := make([]byte, 0, 64+len(manifest))
	b = append(b, wasmMagic...)
	b = append(b, wasmVersion...)

	// () -> i64
	b = appendSection(b, sectionType, []byte{1, typeFunc, 0, 1, valTypeI64})
	b = appendSection(b, sectionFunction, []byte{1, 0})

	var mem []byte
	mem = append(mem, 1, 0) // one memory, min only
	mem = appendULEB128(mem, uint64(pages))
	b = appendSection(b, sectionMemory, mem)

	var exp []byte
	exp = appendULEB128(exp, 2)
	exp = appendName(exp, MemoryExport)
	exp = append(exp, exportMemory, 0)
	exp = appendName(exp, EntryPoint)
	exp = append(exp, exportFunc, 0)
	b = appendSection(b, sectionExport, exp)

	packed := int64(manifestOffset)<<32 | int64(len(manifest))
	var body []byte
	body = append(body, 0) // no locals
	body = append(body, opI64Const)
	body = appendSLEB128(body, packed)
	body = append(body, opEnd)
	var code []byte
	code = appendULEB128(code, 1)
	code = appendULEB128(code, uint64(len(body)))
	code = append(code, body...)
	b = appendSection(b, sectionCode, code)

	var data []byte
	data = appendULEB128(data, 1)
	data = append(data, 0) // active, memory 0
	data = append(data, opI32Const)
	data = appendSLEB128(data, manifestOffset)
	data = append(data, opEnd)
	data = appendULEB128(data, uint64(len(manifest)))
	data = append(data, manifest...)
	b = appendSection(b, sectionData, data)

	return b
}

func appendSection(b []byte, id byte, content []byte) []byte {
	b = append(b, id)
	b = appendULEB128(b, uint64(len(content)))
	return append(b, content...)
}

func appendName(b []byte, name string) []byte {
	b = appendULEB128(b, uint64(len(name)))
	return append(b, name...)
}

func appendULEB128(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

func appendSLEB128(b []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}
