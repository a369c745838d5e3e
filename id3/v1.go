package id3

// v1TagSize is the fixed size of the ID3v1 trailer at the end of the file.
const v1TagSize = 128

// V1 is a decoded ID3v1 trailer tag. All text fields are fixed-width
// latin-1 on disk, stripped of their NUL and space padding here.
type V1 struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   string `json:"album"`
	Year    string `json:"year"`
	Comment string `json:"comment"`
	Genre   byte   `json:"genre"`
}

// ParseV1 looks for the "TAG" marker 128 bytes before the end of data and
// decodes the trailer. It returns nil when the file carries no v1 tag.
func ParseV1(data []byte) *V1 {
	if len(data) < v1TagSize {
		return nil
	}

	t := data[len(data)-v1TagSize:]
	if string(t[:3]) != "TAG" {
		return nil
	}

	return &V1{
		Title:   trimPadding(decodeLatin1(t[3:33])),
		Artist:  trimPadding(decodeLatin1(t[33:63])),
		Album:   trimPadding(decodeLatin1(t[63:93])),
		Year:    trimPadding(decodeLatin1(t[93:97])),
		Comment: trimPadding(decodeLatin1(t[97:127])),
		Genre:   t[127],
	}
}
