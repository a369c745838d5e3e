package rescuefat

import (
	"errors"
	"fmt"

	"github.com/mkling/rescuefat/checkpoint"
)

// Special FAT16 cluster link values.
const (
	fatBadCluster = 0xFFF7
	fatEndOfChain = 0xFFF8

	// firstDataCluster is the lowest valid data cluster index. Entries 0
	// and 1 of the FAT hold the media descriptor and the dirty flags.
	firstDataCluster = 2
)

// fatEntry is one 16 bit cluster link value of the file allocation table.
type fatEntry uint16

func (e fatEntry) Value() uint16 {
	return uint16(e)
}

// IsFree reports an unallocated cluster. A file chain must never reach one.
func (e fatEntry) IsFree() bool {
	return e == 0
}

// IsReserved reports the reserved values 0x0001 and 0xFFF0-0xFFF6.
func (e fatEntry) IsReserved() bool {
	return e == 1 || (e >= 0xFFF0 && e <= 0xFFF6)
}

// IsNextCluster reports a regular link to the next cluster of a chain.
func (e fatEntry) IsNextCluster() bool {
	return e >= firstDataCluster && e <= 0xFFEF
}

// IsBad reports the bad cluster marker 0xFFF7.
func (e fatEntry) IsBad() bool {
	return e == fatBadCluster
}

// IsEOF reports an end-of-chain marker (0xFFF8-0xFFFF).
func (e fatEntry) IsEOF() bool {
	return e >= fatEndOfChain
}

// errStopWalk stops a chain walk early without reporting an error.
var errStopWalk = errors.New("stop walk")

// Table is the cluster allocation table of a volume. It is loaded once and
// read-only afterwards.
type Table struct {
	entries      []fatEntry
	clusterCount uint32
}

// loadTable reads the file allocation table from the partition. The first
// on-disk copy is authoritative; the second one is only consulted when the
// first fails the signature sanity check.
func loadTable(partition []byte, geo Geometry) (*Table, error) {
	first, err := readFatCopy(partition, geo, 0)
	if err != nil {
		return nil, err
	}

	entries := first
	if !fatSignatureOk(first) && geo.NumFATs > 1 {
		second, err := readFatCopy(partition, geo, 1)
		if err == nil && fatSignatureOk(second) {
			entries = second
		}
	}

	return &Table{
		entries:      entries,
		clusterCount: geo.ClusterCount,
	}, nil
}

func readFatCopy(partition []byte, geo Geometry, n uint32) ([]fatEntry, error) {
	offset := geo.fatOffset(n)
	size := int64(geo.FATSizeSectors) * int64(geo.BytesPerSector)
	if offset+size > int64(len(partition)) {
		return nil, checkpoint.Wrap(fmt.Errorf("FAT copy %d ends at byte %d but the partition has only %d bytes", n, offset+size, len(partition)), ErrInvalidBootSector)
	}

	raw := partition[offset : offset+size]
	entries := make([]fatEntry, size/2)
	for i := range entries {
		entries[i] = fatEntry(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
	}
	return entries, nil
}

// fatSignatureOk checks the media descriptor copy in entry 0. Entry 1 is
// left alone because its two top bits double as dirty flags.
func fatSignatureOk(entries []fatEntry) bool {
	if len(entries) < firstDataCluster {
		return false
	}
	return entries[0]&0xFF00 == 0xFF00 && byte(entries[0]) >= 0xF0
}

// Walk calls fn for every cluster of the chain starting at start, in chain
// order. It terminates on the end-of-chain marker and aborts with an
// integrity error on bad, free or reserved links. A visited set guards
// against cyclic chains, so the walk never runs longer than the cluster
// count of the volume. fn may return errStopWalk to end the walk early
// without an error.
func (t *Table) Walk(start uint16, fn func(cluster uint16) error) error {
	cluster := fatEntry(start)
	if cluster.IsFree() {
		return checkpoint.Wrap(fmt.Errorf("chain starts at the free cluster marker"), ErrUnallocatedCluster)
	}
	if !cluster.IsNextCluster() {
		return checkpoint.Wrap(fmt.Errorf("chain starts at invalid cluster %#04x", cluster.Value()), ErrBadCluster)
	}

	visited := make(map[fatEntry]struct{})
	for {
		if _, ok := visited[cluster]; ok {
			return checkpoint.Wrap(fmt.Errorf("cluster %d is linked twice", cluster), ErrCyclicChain)
		}
		visited[cluster] = struct{}{}

		if uint32(cluster)-firstDataCluster >= t.clusterCount || int(cluster) >= len(t.entries) {
			return checkpoint.Wrap(fmt.Errorf("cluster %d lies outside of the data region", cluster), ErrBadCluster)
		}

		if err := fn(cluster.Value()); err != nil {
			if errors.Is(err, errStopWalk) {
				return nil
			}
			return err
		}

		next := t.entries[cluster]
		switch {
		case next.IsEOF():
			return nil
		case next.IsBad():
			return checkpoint.Wrap(fmt.Errorf("cluster %d links to the bad cluster marker", cluster), ErrBadCluster)
		case next.IsFree():
			return checkpoint.Wrap(fmt.Errorf("cluster %d links to a free cluster", cluster), ErrUnallocatedCluster)
		case next.IsReserved():
			return checkpoint.Wrap(fmt.Errorf("cluster %d links to the reserved value %#04x", cluster, next.Value()), ErrBadCluster)
		}
		cluster = next
	}
}

// Chain collects the whole cluster chain starting at start. On an integrity
// error the clusters walked so far are returned alongside the error.
func (t *Table) Chain(start uint16) ([]uint16, error) {
	var chain []uint16
	err := t.Walk(start, func(cluster uint16) error {
		chain = append(chain, cluster)
		return nil
	})
	return chain, err
}
