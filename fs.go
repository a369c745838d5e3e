package rescuefat

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/mkling/rescuefat/checkpoint"
)

// Volume is a parsed FAT16 volume. The underlying image bytes are never
// modified and everything derived from them (geometry, allocation table,
// root directory) is computed once in Open, so a Volume can be shared
// between goroutines without locking.
//
// Volume implements the reading side of afero.Fs.
type Volume struct {
	image     []byte
	partition []byte

	part Partition
	geo  Geometry
	fat  *Table
	root []DirEntry
}

var _ afero.Fs = (*Volume)(nil)
var _ fatFileFs = (*Volume)(nil)

// Open parses image as a FAT16 disk image: partition scan, boot sector,
// allocation table and root directory, in that order. Any error at this
// stage is structural and means the image cannot be salvaged at all.
//
// Both whole-disk images (MBR in sector 0) and bare partition images
// (boot sector in sector 0) are accepted.
func Open(image []byte) (*Volume, error) {
	part, err := FindPartition(image)
	if err != nil {
		return nil, err
	}

	partition := image[part.Offset:]

	geo, err := ParseBootSector(partition)
	if err != nil {
		return nil, err
	}

	fat, err := loadTable(partition, geo)
	if err != nil {
		return nil, err
	}

	root, err := readRoot(partition, geo)
	if err != nil {
		return nil, err
	}

	return &Volume{
		image:     image,
		partition: partition,
		part:      part,
		geo:       geo,
		fat:       fat,
		root:      root,
	}, nil
}

// OpenPath reads a whole image file from fsys and opens it as a Volume.
func OpenPath(fsys afero.Fs, path string) (*Volume, error) {
	image, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, checkpoint.From(err)
	}
	return Open(image)
}

// Partition returns the partition selection of the scan.
func (v *Volume) Partition() Partition {
	return v.part
}

// Geometry returns the derived volume layout.
func (v *Volume) Geometry() Geometry {
	return v.geo
}

// Entries returns the decoded root directory in on-disk order.
func (v *Volume) Entries() []DirEntry {
	return append([]DirEntry(nil), v.root...)
}

// Label returns the volume label from the extended boot sector, trimmed of
// its space padding.
func (v *Volume) Label() string {
	// The FAT16 extended BPB stores the label at byte 43.
	const labelOffset = 43
	if len(v.partition) < labelOffset+11 {
		return ""
	}
	return strings.TrimRight(string(v.partition[labelOffset:labelOffset+11]), " ")
}

// clusterData returns the raw bytes of a data cluster as a sub-slice of the
// partition view. For images truncated mid-cluster the available prefix is
// returned.
func (v *Volume) clusterData(cluster uint16) []byte {
	offset := v.geo.clusterOffset(cluster)
	end := offset + v.geo.clusterSize()
	if offset >= int64(len(v.partition)) {
		return nil
	}
	if end > int64(len(v.partition)) {
		end = int64(len(v.partition))
	}
	return v.partition[offset:end]
}

// ReadFile materializes the complete content of entry by walking its
// cluster chain and concatenating the cluster byte ranges in chain order.
// The result is truncated, never padded, to the declared file size.
//
// Recovery is best-effort: when the chain ends early (bad cluster, cycle,
// free link or truncated image) the bytes recovered so far are returned
// alongside an error matching both ErrTruncatedFile and the original cause.
func (v *Volume) ReadFile(entry DirEntry) ([]byte, error) {
	size := entry.Size()
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, 0, size)
	walkErr := v.fat.Walk(entry.StartCluster(), func(cluster uint16) error {
		buf = append(buf, v.clusterData(cluster)...)
		if int64(len(buf)) >= size {
			return errStopWalk
		}
		return nil
	})

	if int64(len(buf)) > size {
		buf = buf[:size]
	}

	if walkErr != nil {
		return buf, checkpoint.Wrap(walkErr, ErrTruncatedFile)
	}
	if int64(len(buf)) < size {
		return buf, checkpoint.Wrap(fmt.Errorf("recovered %d of %d bytes", len(buf), size), ErrTruncatedFile)
	}
	return buf, nil
}

// readFileAt reads up to readSize bytes of the file starting at the given
// cluster, beginning at the given byte offset inside the file.
func (v *Volume) readFileAt(cluster uint16, fileSize, offset, readSize int64) ([]byte, error) {
	if offset >= fileSize {
		return nil, io.EOF
	}
	if readSize > fileSize-offset {
		readSize = fileSize - offset
	}

	clusterSize := v.geo.clusterSize()
	buf := make([]byte, 0, readSize)

	var pos int64
	err := v.fat.Walk(cluster, func(c uint16) error {
		if pos >= offset+readSize {
			return errStopWalk
		}
		if pos+clusterSize > offset {
			data := v.clusterData(c)

			start := int64(0)
			if offset > pos {
				start = offset - pos
			}
			end := int64(len(data))
			if pos+end > offset+readSize {
				end = offset + readSize - pos
			}
			if start < end {
				buf = append(buf, data[start:end]...)
			}
		}
		pos += clusterSize
		return nil
	})
	if err != nil {
		return buf, err
	}
	return buf, nil
}

// readRoot exposes the root directory to File.
func (v *Volume) readRoot() ([]DirEntry, error) {
	return v.Entries(), nil
}

// findEntry looks up a root directory entry by its display name. FAT short
// names are case-insensitive.
func (v *Volume) findEntry(name string) (DirEntry, bool) {
	for _, entry := range v.root {
		if strings.EqualFold(entry.Name(), name) {
			return entry, true
		}
	}
	return DirEntry{}, false
}

// normalizePath strips the path decorations afero callers may use for the
// root directory.
func normalizePath(name string) string {
	name = strings.TrimPrefix(name, "/")
	if name == "." {
		return ""
	}
	return name
}

// Open opens a file or the root directory ("", "/" or ".") for reading.
func (v *Volume) Open(name string) (afero.File, error) {
	name = normalizePath(name)

	if name == "" {
		return &File{
			fs:          v,
			path:        "",
			isDirectory: true,
			stat:        rootDirInfo{},
		}, nil
	}

	entry, ok := v.findEntry(name)
	if !ok {
		return nil, checkpoint.Wrap(os.ErrNotExist, fmt.Errorf("open %s", name))
	}

	return &File{
		fs:           v,
		path:         entry.Name(),
		isReadOnly:   entry.Attribute&AttrReadOnly != 0,
		isHidden:     entry.Attribute&AttrHidden != 0,
		isSystem:     entry.Attribute&AttrSystem != 0,
		firstCluster: entry.StartCluster(),
		stat:         entry.FileInfo(),
	}, nil
}

// OpenFile supports only read-only flags.
func (v *Volume) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
	}
	return v.Open(name)
}

func (v *Volume) Stat(name string) (os.FileInfo, error) {
	if normalizePath(name) == "" {
		return rootDirInfo{}, nil
	}
	entry, ok := v.findEntry(normalizePath(name))
	if !ok {
		return nil, checkpoint.Wrap(os.ErrNotExist, fmt.Errorf("stat %s", name))
	}
	return entry.FileInfo(), nil
}

func (v *Volume) Name() string {
	return "rescuefat"
}

func (v *Volume) Create(name string) (afero.File, error) {
	return nil, checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) Mkdir(name string, perm os.FileMode) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) MkdirAll(path string, perm os.FileMode) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) Remove(name string) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) RemoveAll(path string) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) Rename(oldname, newname string) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) Chmod(name string, mode os.FileMode) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) Chown(name string, uid, gid int) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}

func (v *Volume) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return checkpoint.Wrap(syscall.EPERM, ErrReadOnly)
}
