package id3

import (
	"encoding/binary"
	"fmt"
)

const (
	v2HeaderSize      = 10
	v2FrameHeaderSize = 10
)

// V2 is a decoded ID3v2 leading tag.
type V2 struct {
	VersionMajor byte
	VersionMinor byte
	Flags        byte

	// Frames holds the raw frames in file order. Text content is decoded
	// lazily through Text.
	Frames []Frame
}

// Frame is one raw ID3v2 frame.
type Frame struct {
	ID    string
	Flags [2]byte
	Data  []byte
}

// Version returns the tag version in the usual "2.major.minor" notation.
func (t *V2) Version() string {
	return fmt.Sprintf("2.%d.%d", t.VersionMajor, t.VersionMinor)
}

// FrameIDs lists the identifiers of all frames in file order.
func (t *V2) FrameIDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, len(t.Frames))
	for i, f := range t.Frames {
		ids[i] = f.ID
	}
	return ids
}

// Text returns the decoded content of the first text frame with the given
// identifier, or "" if the tag has no such frame.
func (t *V2) Text(id string) string {
	if t == nil {
		return ""
	}
	for _, f := range t.Frames {
		if f.ID == id {
			return decodeTextFrame(f.Data)
		}
	}
	return ""
}

// ParseV2 looks for the "ID3" marker at the start of data and decodes the
// tag. It returns nil when the file carries no v2 tag.
//
// The tag header size is synch-safe (four 7 bit bytes) in all versions.
// Frame sizes are synch-safe from v2.4 on but plain big-endian in v2.3,
// which is still the most common version in the wild. A frame that does not
// fit into the remaining tag body ends the walk; everything decoded up to
// that point is kept.
func ParseV2(data []byte) *V2 {
	if len(data) < v2HeaderSize || string(data[:3]) != "ID3" {
		return nil
	}

	tag := &V2{
		VersionMajor: data[3],
		VersionMinor: data[4],
		Flags:        data[5],
	}

	size := synchsafe(data[6:10])
	body := data[v2HeaderSize:]
	if size < len(body) {
		body = body[:size]
	}

	pos := 0
	for pos+v2FrameHeaderSize <= len(body) {
		id := body[pos : pos+4]
		if !validFrameID(id) {
			// Either the padding area or garbage. Stop here.
			break
		}

		var frameSize int
		if tag.VersionMajor >= 4 {
			frameSize = synchsafe(body[pos+4 : pos+8])
		} else {
			frameSize = int(binary.BigEndian.Uint32(body[pos+4 : pos+8]))
		}

		if frameSize < 0 || pos+v2FrameHeaderSize+frameSize > len(body) {
			break
		}

		frame := Frame{
			ID:   string(id),
			Data: append([]byte(nil), body[pos+v2FrameHeaderSize:pos+v2FrameHeaderSize+frameSize]...),
		}
		copy(frame.Flags[:], body[pos+8:pos+10])
		tag.Frames = append(tag.Frames, frame)

		pos += v2FrameHeaderSize + frameSize
	}

	return tag
}

// synchsafe decodes an integer stored as 7 bits per byte, most significant
// byte first. The top bit of every byte is unused so the value can never
// contain a false MP3 sync pattern.
func synchsafe(b []byte) int {
	v := 0
	for _, by := range b {
		v = v<<7 | int(by&0x7F)
	}
	return v
}

// validFrameID reports whether id consists of the uppercase letters and
// digits frame identifiers are made of. Four NUL bytes (the padding area)
// fail this check as intended.
func validFrameID(id []byte) bool {
	for _, c := range id {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
