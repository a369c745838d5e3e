package rescuefat

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mkling/rescuefat/checkpoint"
)

// A FAT16 volume must have a cluster count in this window. Fewer clusters
// mean FAT12, more mean FAT32. The window is part of the FAT specification
// and the only reliable way to tell the variants apart.
const (
	minFat16Clusters = 4085
	maxFat16Clusters = 65524
)

const directoryEntrySize = 32

// Geometry is the layout of a FAT16 volume derived from the BPB. It is
// computed exactly once per volume and never changes afterwards, so it can
// be shared freely between concurrent extractions.
type Geometry struct {
	BytesPerSector    uint32
	SectorsPerCluster uint32
	ReservedSectors   uint32
	NumFATs           uint32
	RootEntryCount    uint32
	TotalSectors      uint32
	FATSizeSectors    uint32

	RootDirSectors     uint32
	FirstRootDirSector uint32
	FirstDataSector    uint32
	ClusterCount       uint32
}

// ParseBootSector decodes and validates the BPB at the start of the
// partition and derives the volume geometry from it.
func ParseBootSector(partition []byte) (Geometry, error) {
	if len(partition) < mbrSectorSize {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("partition is only %d bytes long", len(partition)), ErrInvalidBootSector)
	}

	var bpb BPB
	if err := binary.Read(bytes.NewReader(partition), binary.LittleEndian, &bpb); err != nil {
		return Geometry{}, checkpoint.Wrap(err, ErrInvalidBootSector)
	}

	// FAT only supports 512, 1024, 2048 and 4096 bytes per sector.
	switch bpb.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("invalid sector size %d", bpb.BytesPerSector), ErrInvalidBootSector)
	}

	// Sectors per cluster has to be a power of two and greater than 0.
	// The whole cluster must not exceed 32K.
	if !isPowerOfTwo(uint32(bpb.SectorsPerCluster)) ||
		uint32(bpb.BytesPerSector)*uint32(bpb.SectorsPerCluster) > 32*1024 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("invalid sectors per cluster %d", bpb.SectorsPerCluster), ErrInvalidBootSector)
	}

	if bpb.ReservedSectorCount == 0 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("reserved sector count is zero"), ErrInvalidBootSector)
	}

	if bpb.NumFATs != 1 && bpb.NumFATs != 2 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("invalid number of FATs %d", bpb.NumFATs), ErrInvalidBootSector)
	}

	// FAT16 keeps the root directory in a fixed sector range, so the entry
	// count must be non-zero and fill whole sectors. A zero count is the
	// FAT32 layout.
	if bpb.RootEntryCount == 0 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("root entry count is zero, looks like FAT32"), ErrUnsupportedFilesystem)
	}
	if uint32(bpb.RootEntryCount)*directoryEntrySize%uint32(bpb.BytesPerSector) != 0 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("root entry count %d does not fill whole sectors", bpb.RootEntryCount), ErrInvalidBootSector)
	}

	// FAT32 stores the FAT size in a different field, so zero here means
	// the volume is not FAT12/16.
	if bpb.FATSize16 == 0 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("16 bit FAT size is zero, looks like FAT32"), ErrUnsupportedFilesystem)
	}

	totalSectors := uint32(bpb.TotalSectors16)
	if totalSectors == 0 {
		totalSectors = bpb.TotalSectors32
	}
	if totalSectors == 0 {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("total sector count is zero"), ErrInvalidBootSector)
	}

	geo := Geometry{
		BytesPerSector:    uint32(bpb.BytesPerSector),
		SectorsPerCluster: uint32(bpb.SectorsPerCluster),
		ReservedSectors:   uint32(bpb.ReservedSectorCount),
		NumFATs:           uint32(bpb.NumFATs),
		RootEntryCount:    uint32(bpb.RootEntryCount),
		TotalSectors:      totalSectors,
		FATSizeSectors:    uint32(bpb.FATSize16),
	}

	geo.RootDirSectors = (geo.RootEntryCount*directoryEntrySize + geo.BytesPerSector - 1) / geo.BytesPerSector
	geo.FirstRootDirSector = geo.ReservedSectors + geo.NumFATs*geo.FATSizeSectors
	geo.FirstDataSector = geo.FirstRootDirSector + geo.RootDirSectors

	if geo.FirstDataSector >= geo.TotalSectors {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("data region starts at sector %d but the volume has only %d sectors", geo.FirstDataSector, geo.TotalSectors), ErrInvalidBootSector)
	}
	geo.ClusterCount = (geo.TotalSectors - geo.FirstDataSector) / geo.SectorsPerCluster

	if geo.ClusterCount < minFat16Clusters {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("%d clusters, looks like FAT12", geo.ClusterCount), ErrUnsupportedFilesystem)
	}
	if geo.ClusterCount > maxFat16Clusters {
		return Geometry{}, checkpoint.Wrap(fmt.Errorf("%d clusters, looks like FAT32", geo.ClusterCount), ErrUnsupportedFilesystem)
	}

	return geo, nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// clusterSize returns the size of one cluster in bytes.
func (g Geometry) clusterSize() int64 {
	return int64(g.SectorsPerCluster) * int64(g.BytesPerSector)
}

// clusterOffset returns the byte offset of a data cluster inside the
// partition. Cluster numbering starts at 2 by FAT convention.
func (g Geometry) clusterOffset(cluster uint16) int64 {
	sector := int64(g.FirstDataSector) + int64(cluster-firstDataCluster)*int64(g.SectorsPerCluster)
	return sector * int64(g.BytesPerSector)
}

// rootDirOffset returns the byte offset of the fixed root directory region
// inside the partition.
func (g Geometry) rootDirOffset() int64 {
	return int64(g.FirstRootDirSector) * int64(g.BytesPerSector)
}

// fatOffset returns the byte offset of the n-th FAT copy inside the
// partition.
func (g Geometry) fatOffset(n uint32) int64 {
	return int64(g.ReservedSectors+n*g.FATSizeSectors) * int64(g.BytesPerSector)
}
