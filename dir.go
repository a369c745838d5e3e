package rescuefat

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/mkling/rescuefat/checkpoint"
)

// DirEntry is a decoded short-name entry of the root directory.
type DirEntry struct {
	EntryHeader
}

// Name reconstructs the display name from the 8.3 fields. Both parts are
// trimmed of their trailing space padding independently and joined with a
// dot only when the extension is non-empty.
func (e DirEntry) Name() string {
	name := strings.TrimRight(string(e.EntryHeader.Name[:]), " ")
	ext := strings.TrimRight(string(e.Ext[:]), " ")

	if ext != "" {
		name += "."
	}

	return name + ext
}

// Size returns the file size in bytes as declared by the directory entry.
func (e DirEntry) Size() int64 {
	return int64(e.FileSize)
}

// StartCluster returns the first cluster of the file's chain. FAT16 only
// uses the low 16 bits; the high half of the field belongs to FAT32.
func (e DirEntry) StartCluster() uint16 {
	return e.FirstClusterLO
}

// readRoot decodes the fixed root directory region. Unlike FAT32, the FAT16
// root directory is not a cluster chain but a contiguous sector range right
// before the data region.
//
// Deleted entries, long filename entries, volume labels and subdirectories
// are skipped; everything else is returned in on-disk order.
func readRoot(partition []byte, geo Geometry) ([]DirEntry, error) {
	offset := geo.rootDirOffset()
	size := int64(geo.RootEntryCount) * directoryEntrySize
	if offset+size > int64(len(partition)) {
		return nil, checkpoint.Wrap(fmt.Errorf("root directory ends at byte %d but the partition has only %d bytes", offset+size, len(partition)), ErrInvalidBootSector)
	}

	r := bytes.NewReader(partition[offset : offset+size])

	var entries []DirEntry
	for i := uint32(0); i < geo.RootEntryCount; i++ {
		var header EntryHeader
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return entries, checkpoint.Wrap(err, ErrInvalidBootSector)
		}

		// 0x00 marks the end of the populated region.
		if header.Name[0] == entryEndMarker {
			break
		}
		if header.Name[0] == entryDeletedMarker {
			continue
		}
		if header.Attribute&attrLongNameMask == AttrLongName {
			continue
		}
		if header.Attribute&AttrVolumeID != 0 {
			continue
		}
		// The datasets handled here are flat, subdirectories are not
		// traversed.
		if header.Attribute&AttrDirectory != 0 {
			continue
		}
		if header.Name[0] == '.' {
			continue
		}

		entries = append(entries, DirEntry{header})
	}

	return entries, nil
}
