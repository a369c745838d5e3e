package rescuefat

import (
	"io/fs"
)

// GoDirEntry adapts an os.FileInfo to fs.DirEntry.
type GoDirEntry struct {
	fs.FileInfo
}

func (g GoDirEntry) Type() fs.FileMode {
	return g.FileInfo.Mode().Type()
}

func (g GoDirEntry) Info() (fs.FileInfo, error) {
	return g.FileInfo, nil
}

// GoFile wraps File to satisfy fs.File and fs.ReadDirFile.
type GoFile struct {
	*File
}

func (g GoFile) Stat() (fs.FileInfo, error) {
	return g.File.Stat()
}

func (g GoFile) Read(bytes []byte) (int, error) {
	return g.File.Read(bytes)
}

func (g GoFile) Close() error {
	return g.File.Close()
}

func (g GoFile) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := g.File.Readdir(n)

	goEntries := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		goEntries[i] = GoDirEntry{e}
	}

	return goEntries, err
}

// GoVolume wraps Volume to be compatible with fs.FS, so the salvaged
// volume can be handed to anything expecting the standard library
// filesystem interface.
type GoVolume struct {
	*Volume
}

// NewGoVolume opens a FAT16 image as an fs.FS compatible filesystem.
func NewGoVolume(image []byte) (*GoVolume, error) {
	volume, err := Open(image)
	if err != nil {
		return nil, err
	}

	return &GoVolume{volume}, nil
}

func (g GoVolume) Open(name string) (fs.File, error) {
	file, err := g.Volume.Open(name)
	if err != nil {
		return nil, err
	}

	return GoFile{file.(*File)}, nil
}
