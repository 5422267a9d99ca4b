package midi

// MIDI System Real-Time status bytes
const (
	Clock    byte = 0xF8 // one 1/24-quarter-note tick
	Start    byte = 0xFA // transport started from position 0
	Continue byte = 0xFB // transport resumed from a non-zero position
	Stop     byte = 0xFC // transport stopped

	// SongPositionStatus heads the 3-byte Song Position Pointer message.
	SongPositionStatus byte = 0xF2
)

// MaxSongPosition is one past the largest MIDI-beat count the 14-bit
// Song Position register can hold.
const MaxSongPosition = 1 << 14

// Message is a single encoded MIDI message of at most three bytes.
// It is a plain value so the realtime path can build and copy messages
// without allocating.
type Message struct {
	data [3]byte
	size uint8
}

// Realtime wraps a one-byte System Real-Time message.
func Realtime(status byte) Message {
	return Message{data: [3]byte{status}, size: 1}
}

// SongPosition encodes a Song Position Pointer for the given MIDI-beat
// count (one MIDI-beat = six clocks). ok is false when beats does not
// fit the 14-bit register; such positions must not be sent.
func SongPosition(beats int64) (msg Message, ok bool) {
	if beats < 0 || beats >= MaxSongPosition {
		return Message{}, false
	}
	return Message{
		data: [3]byte{
			SongPositionStatus,
			byte(beats & 0x7F),        // LSB
			byte((beats >> 7) & 0x7F), // MSB
		},
		size: 3,
	}, true
}

// Bytes returns the wire form of the message.
func (m Message) Bytes() []byte {
	return m.data[:m.size]
}

// Len returns the encoded length in bytes.
func (m Message) Len() int {
	return int(m.size)
}

// Status returns the status byte of the message.
func (m Message) Status() byte {
	return m.data[0]
}

// IsRealtime reports whether b is one of the System Real-Time status
// bytes this package deals in.
func IsRealtime(b byte) bool {
	switch b {
	case Clock, Start, Continue, Stop:
		return true
	}
	return false
}
