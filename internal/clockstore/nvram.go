package clockstore

// NVRAM is the decoded form of the 5-byte persisted layout in §6: byte
// 0 is dst_state, bytes 1-4 are a little-endian signed 32-bit
// gmt_offset_hours. Only the low byte of the 32-bit field is ever
// meaningful (offsets run -12..+14) but the wire layout is a full
// word, matching the original firmware's NVRAM struct.
type NVRAM struct {
	DSTState       DSTState
	GMTOffsetHours int8
}

// Encode packs n into the 5-byte NVRAM layout.
func (n NVRAM) Encode() [5]byte {
	var raw [5]byte
	raw[0] = byte(n.DSTState)
	v := uint32(int32(n.GMTOffsetHours))
	raw[1] = byte(v)
	raw[2] = byte(v >> 8)
	raw[3] = byte(v >> 16)
	raw[4] = byte(v >> 24)
	return raw
}

// DecodeNVRAM unpacks the 5-byte NVRAM layout.
func DecodeNVRAM(raw [5]byte) NVRAM {
	v := uint32(raw[1]) | uint32(raw[2])<<8 | uint32(raw[3])<<16 | uint32(raw[4])<<24
	return NVRAM{
		DSTState:       DSTState(raw[0]),
		GMTOffsetHours: int8(int32(v)),
	}
}
