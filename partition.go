package rescuefat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mkling/rescuefat/checkpoint"
)

const (
	mbrPartitionTableOffset = 446
	mbrSignatureOffset      = 510

	// mbrSectorSize is assumed for LBA translation until the BPB reports
	// the real sector size. Practically all FAT16 media use 512.
	mbrSectorSize = 512
)

// Partition is the result of scanning the master boot record. Offset is the
// byte position of the FAT16 partition inside the image. For images captured
// from a bare partition (no MBR, sector 0 is already a boot sector) Index
// is -1 and Offset is 0.
type Partition struct {
	Entry  PartitionEntry
	Index  int
	Offset int64
}

// fat16PartitionType reports whether t is one of the legacy FAT16 partition
// type codes.
func fat16PartitionType(t byte) bool {
	switch t {
	case 0x04, 0x06, 0x0E, 0x14, 0x16, 0x1E:
		return true
	}
	return false
}

// FindPartition locates the FAT16 partition inside a raw disk image.
//
// It requires the 0x55AA signature at the end of sector 0 and then selects
// the first partition entry carrying a FAT16 type code. If no entry matches,
// the first entry with a non-zero sector count is used instead, because many
// of the images seen in practice label their single partition with an
// unrelated type code.
func FindPartition(image []byte) (Partition, error) {
	if len(image) < mbrSectorSize {
		return Partition{}, checkpoint.Wrap(fmt.Errorf("image is only %d bytes long", len(image)), ErrNoPartitionTable)
	}
	if image[mbrSignatureOffset] != 0x55 || image[mbrSignatureOffset+1] != 0xAA {
		return Partition{}, checkpoint.From(ErrNoPartitionTable)
	}

	// Sector 0 may already be the boot sector of a bare partition image.
	if looksLikeBootSector(image) {
		return Partition{Index: -1}, nil
	}

	var table [4]PartitionEntry
	r := bytes.NewReader(image[mbrPartitionTableOffset:mbrSignatureOffset])
	if err := binary.Read(r, binary.LittleEndian, &table); err != nil {
		return Partition{}, checkpoint.Wrap(err, ErrNoPartitionTable)
	}

	selected := -1
	for i, entry := range table {
		if fat16PartitionType(entry.Type) && entry.SectorCount > 0 {
			selected = i
			break
		}
	}
	if selected < 0 {
		for i, entry := range table {
			if entry.SectorCount > 0 {
				selected = i
				break
			}
		}
	}
	if selected < 0 {
		return Partition{}, checkpoint.From(ErrNoFatPartition)
	}

	entry := table[selected]
	offset := int64(entry.StartLBA) * mbrSectorSize
	if offset >= int64(len(image)) {
		return Partition{}, checkpoint.Wrap(fmt.Errorf("partition %d starts at byte %d which is beyond the image", selected, offset), ErrNoFatPartition)
	}

	return Partition{
		Entry:  entry,
		Index:  selected,
		Offset: offset,
	}, nil
}

// looksLikeBootSector applies the same heuristic as the boot sector parser:
// valid x86 jump instructions at the start and a plausible sector size.
func looksLikeBootSector(sector []byte) bool {
	if !(sector[0] == 0xEB && sector[2] == 0x90) && sector[0] != 0xE9 {
		return false
	}

	switch binary.LittleEndian.Uint16(sector[11:13]) {
	case 512, 1024, 2048, 4096:
		return true
	}
	return false
}
