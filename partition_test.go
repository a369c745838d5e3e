package rescuefat

import (
	"encoding/binary"
	"errors"
	"testing"
)

// mbrImage builds a minimal whole-disk image: an MBR with the given
// partition entries and enough trailing bytes to hold the partitions.
func mbrImage(t *testing.T, size int, entries ...PartitionEntry) []byte {
	t.Helper()

	if len(entries) > 4 {
		t.Fatalf("at most 4 partition entries, got %d", len(entries))
	}

	image := make([]byte, size)
	for i, e := range entries {
		raw := image[mbrPartitionTableOffset+i*16:]
		raw[0] = e.BootFlag
		raw[4] = e.Type
		binary.LittleEndian.PutUint32(raw[8:12], e.StartLBA)
		binary.LittleEndian.PutUint32(raw[12:16], e.SectorCount)
	}
	image[mbrSignatureOffset] = 0x55
	image[mbrSignatureOffset+1] = 0xAA
	return image
}

func TestFindPartition(t *testing.T) {
	tests := []struct {
		name       string
		image      []byte
		wantIndex  int
		wantOffset int64
		wantErr    error
	}{
		{
			name:    "image shorter than one sector",
			image:   make([]byte, 100),
			wantErr: ErrNoPartitionTable,
		},
		{
			name:    "missing boot signature",
			image:   make([]byte, 512),
			wantErr: ErrNoPartitionTable,
		},
		{
			name: "first FAT16 partition selected",
			image: mbrImage(t, 2048*512+512,
				PartitionEntry{Type: 0x83, StartLBA: 64, SectorCount: 128},
				PartitionEntry{Type: 0x06, StartLBA: 2048, SectorCount: 1},
			),
			wantIndex:  1,
			wantOffset: 2048 * 512,
		},
		{
			name: "heuristic fallback to first non-empty entry",
			image: mbrImage(t, 64*512+512,
				PartitionEntry{Type: 0x83, StartLBA: 63, SectorCount: 128},
			),
			wantIndex:  0,
			wantOffset: 63 * 512,
		},
		{
			name:    "empty partition table",
			image:   mbrImage(t, 512),
			wantErr: ErrNoFatPartition,
		},
		{
			name: "partition start beyond the image",
			image: mbrImage(t, 512,
				PartitionEntry{Type: 0x06, StartLBA: 2048, SectorCount: 128},
			),
			wantErr: ErrNoFatPartition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindPartition(tt.image)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FindPartition() error = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, ErrStructural) {
					t.Errorf("FindPartition() error %v does not match ErrStructural", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindPartition() error = %v", err)
			}
			if got.Index != tt.wantIndex {
				t.Errorf("FindPartition() index = %d, want %d", got.Index, tt.wantIndex)
			}
			if got.Offset != tt.wantOffset {
				t.Errorf("FindPartition() offset = %d, want %d", got.Offset, tt.wantOffset)
			}
		})
	}
}

func TestFindPartition_BarePartitionImage(t *testing.T) {
	image := newImageBuilder(t).bytes()

	got, err := FindPartition(image)
	if err != nil {
		t.Fatalf("FindPartition() error = %v", err)
	}
	if got.Index != -1 {
		t.Errorf("FindPartition() index = %d, want -1 for a bare partition", got.Index)
	}
	if got.Offset != 0 {
		t.Errorf("FindPartition() offset = %d, want 0", got.Offset)
	}
}

func Test_fat16PartitionType(t *testing.T) {
	for _, code := range []byte{0x04, 0x06, 0x0E, 0x14, 0x16, 0x1E} {
		if !fat16PartitionType(code) {
			t.Errorf("fat16PartitionType(%#02x) = false, want true", code)
		}
	}
	for _, code := range []byte{0x00, 0x05, 0x07, 0x0B, 0x0C, 0x83} {
		if fat16PartitionType(code) {
			t.Errorf("fat16PartitionType(%#02x) = true, want false", code)
		}
	}
}
