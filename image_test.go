package rescuefat

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"
)

// Test volume layout: 512 bytes per sector, one sector per cluster, one
// reserved sector, two FAT copies of 17 sectors each and 32 root entries
// (two sectors). 4200 total sectors leave 4163 data clusters, comfortably
// inside the FAT16 window.
const (
	testBytesPerSector = 512
	testFatSectors     = 17
	testRootEntries    = 32
	testTotalSectors   = 4200

	testFirstRootSector = 1 + 2*testFatSectors
	testFirstDataSector = testFirstRootSector + 2
	testLabel           = "RESCUETEST"
)

// testModTime is planted into every file entry the builder creates.
var testModTime = time.Date(2022, 3, 14, 15, 9, 26, 0, time.UTC)

// imageBuilder assembles a synthetic FAT16 partition image for tests.
// Files are laid out in sequential clusters; tests poke the fat slice
// directly to plant cycles, bad clusters or truncation.
type imageBuilder struct {
	t *testing.T

	partition []byte
	fat       []uint16
	rootUsed  int
	next      uint16
}

func newImageBuilder(t *testing.T) *imageBuilder {
	t.Helper()

	b := &imageBuilder{
		t:         t,
		partition: make([]byte, testTotalSectors*testBytesPerSector),
		fat:       make([]uint16, testFatSectors*testBytesPerSector/2),
		next:      firstDataCluster,
	}

	boot := b.partition
	boot[0], boot[1], boot[2] = 0xEB, 0x3C, 0x90
	copy(boot[3:11], "MSDOS5.0")
	binary.LittleEndian.PutUint16(boot[11:13], testBytesPerSector)
	boot[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(boot[14:16], 1)
	boot[16] = 2 // number of FATs
	binary.LittleEndian.PutUint16(boot[17:19], testRootEntries)
	binary.LittleEndian.PutUint16(boot[19:21], testTotalSectors)
	boot[21] = 0xF8
	binary.LittleEndian.PutUint16(boot[22:24], testFatSectors)
	copy(boot[43:54], (testLabel + strings.Repeat(" ", 11))[:11])
	boot[510], boot[511] = 0x55, 0xAA

	b.fat[0] = 0xFFF8
	b.fat[1] = 0xFFFF

	return b
}

// addFile plants data in sequential clusters, links them in the FAT and
// appends a root directory entry. It returns the first cluster. size allows
// declaring a different size than len(data); pass -1 to use len(data).
func (b *imageBuilder) addFile(name, ext string, data []byte, size int) uint16 {
	b.t.Helper()

	if size < 0 {
		size = len(data)
	}

	clusters := (len(data) + testBytesPerSector - 1) / testBytesPerSector
	if clusters == 0 {
		clusters = 1
	}

	start := b.next
	for i := 0; i < clusters; i++ {
		cluster := start + uint16(i)
		offset := (testFirstDataSector + int(cluster) - firstDataCluster) * testBytesPerSector

		chunk := data[i*testBytesPerSector:]
		if len(chunk) > testBytesPerSector {
			chunk = chunk[:testBytesPerSector]
		}
		copy(b.partition[offset:], chunk)

		if i == clusters-1 {
			b.fat[cluster] = 0xFFFF
		} else {
			b.fat[cluster] = cluster + 1
		}
	}
	b.next += uint16(clusters)

	b.addRootEntry(name, ext, AttrArchive, start, uint32(size))
	return start
}

// addRootEntry appends a raw 32 byte entry to the root directory.
func (b *imageBuilder) addRootEntry(name, ext string, attr byte, cluster uint16, size uint32) {
	b.t.Helper()

	if len(name) > 8 || len(ext) > 3 {
		b.t.Fatalf("invalid 8.3 name %q.%q", name, ext)
	}
	if b.rootUsed >= testRootEntries {
		b.t.Fatalf("root directory is full")
	}

	entry := b.rootEntrySlot(b.rootUsed)
	b.rootUsed++

	copy(entry[0:8], strings.Repeat(" ", 8))
	copy(entry[0:8], name)
	copy(entry[8:11], strings.Repeat(" ", 3))
	copy(entry[8:11], ext)
	entry[11] = attr
	binary.LittleEndian.PutUint16(entry[22:24], encodeFatTime(testModTime))
	binary.LittleEndian.PutUint16(entry[24:26], encodeFatDate(testModTime))
	binary.LittleEndian.PutUint16(entry[26:28], cluster)
	binary.LittleEndian.PutUint32(entry[28:32], size)
}

func (b *imageBuilder) rootEntrySlot(i int) []byte {
	offset := testFirstRootSector*testBytesPerSector + i*directoryEntrySize
	return b.partition[offset : offset+directoryEntrySize]
}

// bytes serializes the FAT into both on-disk copies and returns the bare
// partition image.
func (b *imageBuilder) bytes() []byte {
	for copyIdx := 0; copyIdx < 2; copyIdx++ {
		offset := (1 + copyIdx*testFatSectors) * testBytesPerSector
		for i, v := range b.fat {
			binary.LittleEndian.PutUint16(b.partition[offset+i*2:], v)
		}
	}
	return b.partition
}

// withMBR wraps the partition image into a whole-disk image with a
// partition table pointing at the given LBA.
func (b *imageBuilder) withMBR(startLBA uint32) []byte {
	partition := b.bytes()

	disk := make([]byte, int(startLBA)*mbrSectorSize+len(partition))
	entry := disk[mbrPartitionTableOffset:]
	entry[4] = 0x06 // FAT16
	binary.LittleEndian.PutUint32(entry[8:12], startLBA)
	binary.LittleEndian.PutUint32(entry[12:16], testTotalSectors)
	disk[mbrSignatureOffset], disk[mbrSignatureOffset+1] = 0x55, 0xAA

	copy(disk[int(startLBA)*mbrSectorSize:], partition)
	return disk
}

func encodeFatTime(t time.Time) uint16 {
	return uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
}

func encodeFatDate(t time.Time) uint16 {
	return uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
}

// repeatPattern returns n bytes of a recognizable, position-dependent
// pattern so cluster mixups show up as content differences.
func repeatPattern(seed byte, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = seed + byte(i%251)
	}
	return data
}
