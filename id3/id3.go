// Package id3 reads the metadata tags embedded in MP3 files: the fixed
// 128 byte ID3v1 trailer and the variable-length ID3v2 header block.
//
// The package is deliberately tolerant. Files without any tag are common
// and yield an empty Tag, never an error, and malformed or truncated frames
// end the frame walk instead of aborting the whole parse.
package id3

// Tag holds whichever tags were found in a file. Both fields are optional
// and independent; nil means "no tag of that kind".
type Tag struct {
	V1 *V1
	V2 *V2
}

// Parse tries both tag locations on the raw file bytes.
func Parse(data []byte) Tag {
	return Tag{
		V1: ParseV1(data),
		V2: ParseV2(data),
	}
}

// The merged accessors prefer ID3v2 fields and fall back to ID3v1, because
// v2 tags are richer and not limited to 30 characters.

func (t Tag) Title() string {
	if s := firstText(t.V2, "TIT2", "TIT1"); s != "" {
		return s
	}
	if t.V1 != nil {
		return t.V1.Title
	}
	return ""
}

func (t Tag) Artist() string {
	if s := firstText(t.V2, "TPE1", "TPE2"); s != "" {
		return s
	}
	if t.V1 != nil {
		return t.V1.Artist
	}
	return ""
}

func (t Tag) Album() string {
	if s := firstText(t.V2, "TALB"); s != "" {
		return s
	}
	if t.V1 != nil {
		return t.V1.Album
	}
	return ""
}

// Year prefers the ID3v2.4 TDRC frame over the older TYER frame.
func (t Tag) Year() string {
	if s := firstText(t.V2, "TDRC", "TYER"); s != "" {
		return s
	}
	if t.V1 != nil {
		return t.V1.Year
	}
	return ""
}

// Genre returns the textual TCON frame if present. The numeric ID3v1 genre
// code stays available through the V1 field.
func (t Tag) Genre() string {
	return firstText(t.V2, "TCON")
}

func firstText(v2 *V2, ids ...string) string {
	for _, id := range ids {
		if s := v2.Text(id); s != "" {
			return s
		}
	}
	return ""
}
