package rescuefat

import (
	"os"
	"time"
)

// FileInfo adapts the directory entry to os.FileInfo.
func (e DirEntry) FileInfo() os.FileInfo {
	return dirEntryFileInfo{e}
}

type dirEntryFileInfo struct {
	entry DirEntry
}

func (e dirEntryFileInfo) Name() string {
	return e.entry.Name()
}

func (e dirEntryFileInfo) Size() int64 {
	return e.entry.Size()
}

func (e dirEntryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir | 0o555
	}
	return 0o444
}

// ModTime combines the write date and write time fields of the entry.
// If the date field is invalid the zero time.Time is returned; the time
// field alone cannot be checked that way because midnight is a perfectly
// valid value.
func (e dirEntryFileInfo) ModTime() time.Time {
	writeDate := ParseDate(e.entry.WriteDate)
	writeTime := ParseTime(e.entry.WriteTime)

	if writeDate.IsZero() {
		return time.Time{}
	}

	return time.Date(writeDate.Year(), writeDate.Month(), writeDate.Day(),
		writeTime.Hour(), writeTime.Minute(), writeTime.Second(), 0, time.UTC)
}

func (e dirEntryFileInfo) IsDir() bool {
	return e.entry.Attribute&AttrDirectory != 0
}

func (e dirEntryFileInfo) Sys() interface{} {
	return e.entry.EntryHeader
}

// rootDirInfo is the FileInfo of the root directory itself, which has no
// directory entry of its own in FAT16.
type rootDirInfo struct{}

func (rootDirInfo) Name() string       { return "/" }
func (rootDirInfo) Size() int64        { return 0 }
func (rootDirInfo) Mode() os.FileMode  { return os.ModeDir | 0o555 }
func (rootDirInfo) ModTime() time.Time { return time.Time{} }
func (rootDirInfo) IsDir() bool        { return true }
func (rootDirInfo) Sys() interface{}   { return nil }
