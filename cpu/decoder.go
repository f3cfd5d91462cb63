package cpu

// FieldId names an instruction field.
type FieldId int

const (
	FIELD_RD     = FieldId(iota) // Destination register.
	FIELD_RS1                    // First source register.
	FIELD_RS2                    // Second source register.
	FIELD_ALU                    // ALU function.
	FIELD_IMM                    // 16-bit immediate.
	FIELD_LHW                    // Low half word selector.
	FIELD_OFFSET                 // Signed 24-bit branch offset.
	FIELD_SELECT                 // Flag select mask.
)

var _fieldWidth = [...]uint{
	FIELD_RD:     REG_BITS,
	FIELD_RS1:    REG_BITS,
	FIELD_RS2:    REG_BITS,
	FIELD_ALU:    ALU_BITS,
	FIELD_IMM:    IMM_BITS,
	FIELD_LHW:    LHW_BITS,
	FIELD_OFFSET: OFFSET_BITS,
	FIELD_SELECT: SELECT_BITS,
}

// Width returns the width of the field in bits.
func (id FieldId) Width() uint {
	return _fieldWidth[id]
}

// _layout lists the fields of each opcode in the order they are drawn from
// the word, following the opcode. It drives both Decode and Encode.
var _layout = map[Opcode][]FieldId{
	OP_ALU:   {FIELD_RD, FIELD_RS1, FIELD_RS2, FIELD_ALU},
	OP_LSL:   {FIELD_RD, FIELD_RS1, FIELD_RS2},
	OP_ASR:   {FIELD_RD, FIELD_RS1, FIELD_RS2},
	OP_LSR:   {FIELD_RD, FIELD_RS1, FIELD_RS2},
	OP_LOAD:  {FIELD_RD, FIELD_RS1},
	OP_LOADI: {FIELD_RD, FIELD_RS1, FIELD_IMM, FIELD_LHW},
	OP_STORE: {FIELD_RD, FIELD_RS1},
	OP_JMP:   {FIELD_RS1},
	OP_JMPI:  {FIELD_OFFSET},
	OP_JMPC:  {FIELD_RS1, FIELD_SELECT},
	OP_JMPIC: {FIELD_OFFSET, FIELD_SELECT},
	OP_BREAK: {},
}

// Cursor is a read position within an instruction word.
type Cursor struct {
	Code   Code
	Offset uint // Bit offset of the next field.
}

func mask(width uint) uint32 {
	return uint32((uint64(1) << width) - 1)
}

// Next extracts the width bits at the cursor, and returns them with the
// cursor advanced past them. Bits past the end of the word read as zero.
func (cur Cursor) Next(width uint) (value uint32, next Cursor) {
	value = (uint32(cur.Code) >> cur.Offset) & mask(width)
	next = Cursor{Code: cur.Code, Offset: cur.Offset + width}
	return
}

// signExtend sign extends the low width bits of value.
func signExtend(value uint32, width uint) int32 {
	shift := WORD_BITS - width
	return int32(value<<shift) >> shift
}

func (fields *Fields) set(id FieldId, value uint32) {
	switch id {
	case FIELD_RD:
		fields.Rd = Reg(value)
	case FIELD_RS1:
		fields.Rs1 = Reg(value)
	case FIELD_RS2:
		fields.Rs2 = Reg(value)
	case FIELD_ALU:
		fields.Alu = AluFunc(value)
	case FIELD_IMM:
		fields.Imm = uint16(value)
	case FIELD_LHW:
		fields.Lhw = value != 0
	case FIELD_OFFSET:
		fields.Offset = signExtend(value, OFFSET_BITS)
	case FIELD_SELECT:
		fields.Select = Flags(value)
	}
}

func (fields *Fields) get(id FieldId) (value uint32) {
	switch id {
	case FIELD_RD:
		value = uint32(fields.Rd)
	case FIELD_RS1:
		value = uint32(fields.Rs1)
	case FIELD_RS2:
		value = uint32(fields.Rs2)
	case FIELD_ALU:
		value = uint32(fields.Alu)
	case FIELD_IMM:
		value = uint32(fields.Imm)
	case FIELD_LHW:
		if fields.Lhw {
			value = 1
		}
	case FIELD_OFFSET:
		value = uint32(fields.Offset)
	case FIELD_SELECT:
		value = uint32(fields.Select)
	}
	return
}

// Decode splits the instruction into its opcode and operand fields.
// Opcodes without a layout return ErrOpcodeDecode.
func (code Code) Decode() (op Opcode, fields Fields, err error) {
	var value uint32
	cur := Cursor{Code: code}

	value, cur = cur.Next(OPCODE_BITS)
	op = Opcode(value)

	ids, ok := _layout[op]
	if !ok {
		err = ErrOpcodeDecode
		return
	}

	for _, id := range ids {
		value, cur = cur.Next(id.Width())
		fields.set(id, value)
	}

	return
}

// Encode packs the fields of the opcode's layout into an instruction word.
// Fields are truncated to their width.
func Encode(op Opcode, fields Fields) Code {
	word := uint32(op) & mask(OPCODE_BITS)
	offset := uint(OPCODE_BITS)

	for _, id := range _layout[op] {
		width := id.Width()
		word |= (fields.get(id) & mask(width)) << offset
		offset += width
	}

	return Code(word)
}
