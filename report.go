package rescuefat

import (
	"errors"
	"time"

	"github.com/mkling/rescuefat/id3"
)

// Record is the structured per-file result handed to an external report
// generator. Serialization is the consumer's business; the json tags only
// fix the field names.
type Record struct {
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	Modified     time.Time `json:"modified,omitempty"`
	StartCluster uint16    `json:"start_cluster"`

	// Integrity is empty for cleanly recovered files and carries a short
	// diagnostic otherwise.
	Integrity string `json:"integrity,omitempty"`

	// Best available metadata, merged from both tag kinds (v2 preferred).
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Year   string `json:"year,omitempty"`
	Genre  string `json:"genre,omitempty"`

	ID3v1        *id3.V1  `json:"id3v1,omitempty"`
	ID3v2Version string   `json:"id3v2_version,omitempty"`
	ID3v2Frames  []string `json:"id3v2_frames,omitempty"`
}

// Describe combines an extraction result and the recovered bytes into a
// report record, running the tag parser over the bytes.
func Describe(result Result, data []byte) Record {
	tag := id3.Parse(data)

	record := Record{
		Filename:     result.Name,
		SizeBytes:    result.Size,
		StartCluster: result.Entry.StartCluster(),
		Integrity:    integrityLabel(result.Err),

		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
		Year:   tag.Year(),
		Genre:  tag.Genre(),

		ID3v1: tag.V1,
	}

	if info := result.Entry.FileInfo(); !info.ModTime().IsZero() {
		record.Modified = info.ModTime()
	}

	if tag.V2 != nil {
		record.ID3v2Version = tag.V2.Version()
		record.ID3v2Frames = tag.V2.FrameIDs()
	}

	return record
}

// integrityLabel maps an extraction error to a short stable diagnostic.
func integrityLabel(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadCluster):
		return "bad cluster"
	case errors.Is(err, ErrUnallocatedCluster):
		return "unallocated cluster"
	case errors.Is(err, ErrCyclicChain):
		return "cyclic cluster chain"
	case errors.Is(err, ErrTruncatedFile):
		return "truncated"
	default:
		return "write failed"
	}
}
