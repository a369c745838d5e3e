package rescuefat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func dirEntryWithName(name, ext string) DirEntry {
	var header EntryHeader
	copy(header.Name[:], "        ")
	copy(header.Name[:], name)
	copy(header.Ext[:], "   ")
	copy(header.Ext[:], ext)
	return DirEntry{header}
}

func TestDirEntry_Name(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{name: "SONG01", ext: "MP3", want: "SONG01.MP3"},
		{name: "README", ext: "", want: "README"},
		{name: "A", ext: "B", want: "A.B"},
		{name: "TRACK_01", ext: "MP3", want: "TRACK_01.MP3"},
		{name: "NOTES", ext: "TXT", want: "NOTES.TXT"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := dirEntryWithName(tt.name, tt.ext).Name(); got != tt.want {
				t.Errorf("DirEntry.Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func Test_readRoot(t *testing.T) {
	b := newImageBuilder(t)
	b.addFile("SONG01", "MP3", repeatPattern(1, 700), -1)
	b.addFile("SONG02", "MP3", repeatPattern(2, 100), -1)

	// Entries the reader must skip over.
	b.addRootEntry("DELETED", "MP3", AttrArchive, 9, 100)
	b.rootEntrySlot(b.rootUsed - 1)[0] = entryDeletedMarker
	b.addRootEntry("LFNPART", "X", AttrLongName, 0, 0)
	b.addRootEntry(testLabel[:8], "", AttrVolumeID, 0, 0)
	b.addRootEntry("MUSIC", "", AttrDirectory, 10, 0)
	b.addRootEntry(".", "", AttrDirectory, 0, 0)

	b.addFile("LAST", "TXT", repeatPattern(3, 10), -1)

	partition := b.bytes()
	geo, err := ParseBootSector(partition)
	if err != nil {
		t.Fatalf("ParseBootSector() error = %v", err)
	}

	entries, err := readRoot(partition, geo)
	if err != nil {
		t.Fatalf("readRoot() error = %v", err)
	}

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	want := []string{"SONG01.MP3", "SONG02.MP3", "LAST.TXT"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected entries: diff (-want +got):\n%s", diff)
	}

	if got := entries[0].Size(); got != 700 {
		t.Errorf("Size() = %d, want 700", got)
	}
	if got := entries[0].StartCluster(); got != 2 {
		t.Errorf("StartCluster() = %d, want 2", got)
	}
	if got := entries[1].StartCluster(); got != 4 {
		t.Errorf("StartCluster() = %d, want 4", got)
	}
}

// Entries after the 0x00 end marker must not be decoded, even when they
// hold leftover data.
func Test_readRoot_StopsAtEndMarker(t *testing.T) {
	b := newImageBuilder(t)
	b.addFile("FIRST", "TXT", repeatPattern(1, 10), -1)

	// Leave slot 1 empty and plant a stale entry behind it.
	stale := b.rootEntrySlot(2)
	copy(stale[0:8], "STALE   ")
	copy(stale[8:11], "TXT")
	stale[11] = AttrArchive

	partition := b.bytes()
	geo, err := ParseBootSector(partition)
	if err != nil {
		t.Fatalf("ParseBootSector() error = %v", err)
	}

	entries, err := readRoot(partition, geo)
	if err != nil {
		t.Fatalf("readRoot() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "FIRST.TXT" {
		t.Fatalf("readRoot() = %v, want only FIRST.TXT", entries)
	}
}

func Test_readRoot_TruncatedPartition(t *testing.T) {
	b := newImageBuilder(t)
	partition := b.bytes()[:testFirstRootSector*testBytesPerSector]

	geo, err := ParseBootSector(partition)
	if err != nil {
		t.Fatalf("ParseBootSector() error = %v", err)
	}

	if _, err := readRoot(partition, geo); err == nil {
		t.Fatal("readRoot() succeeded on a truncated partition")
	}
}
