// File model contains the structs which match the raw on-disk structures of
// an MBR partitioned FAT16 volume. All of them are decoded with binary.Read
// in little-endian order, so field order and widths matter.

package rescuefat

// PartitionEntry is one of the four 16 byte records of the MBR partition
// table starting at byte 446.
type PartitionEntry struct {
	BootFlag    byte
	FirstCHS    [3]byte
	Type        byte
	LastCHS     [3]byte
	StartLBA    uint32
	SectorCount uint32
}

// BPB is the BIOS Parameter Block at the start of the boot sector.
// The trailing bytes of the boot sector differ between FAT variants and are
// not interpreted here.
type BPB struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
}

// EntryHeader is a 32 byte short-name directory entry.
type EntryHeader struct {
	Name            [8]byte
	Ext             [3]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// Directory entry attribute bits.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20

	// AttrLongName marks a VFAT long filename entry.
	AttrLongName     = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
	attrLongNameMask = AttrLongName | AttrDirectory | AttrArchive
)

// Markers in the first byte of a directory entry.
const (
	entryEndMarker     = 0x00
	entryDeletedMarker = 0xE5
)
