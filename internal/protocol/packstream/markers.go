package packstream

// Marker bytes, PackStream v1.
const (
	TinyString byte = 0x80
	TinyList   byte = 0x90
	TinyMap    byte = 0xA0
	TinyStruct byte = 0xB0

	Null    byte = 0xC0
	Float64 byte = 0xC1
	False   byte = 0xC2
	True    byte = 0xC3

	Int8  byte = 0xC8
	Int16 byte = 0xC9
	Int32 byte = 0xCA
	Int64 byte = 0xCB

	Bytes8  byte = 0xCC
	Bytes16 byte = 0xCD
	Bytes32 byte = 0xCE

	String8  byte = 0xD0
	String16 byte = 0xD1
	String32 byte = 0xD2

	List8  byte = 0xD4
	List16 byte = 0xD5
	List32 byte = 0xD6

	Map8  byte = 0xD8
	Map16 byte = 0xD9
	Map32 byte = 0xDA
)

const (
	// MaxStructFields is the largest field count a struct header may carry.
	MaxStructFields = 15

	tinySizeLimit = 0x10
	maxSize8      = 0xFF
	maxSize16     = 0xFFFF
	maxSize32     = 0xFFFFFFFF

	minTinyInt = -16
	maxTinyInt = 127
)
