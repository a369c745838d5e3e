package rescuefat

import (
	"errors"
	"fmt"
)

// The error taxonomy of the salvage run. Structural errors mean the on-disk
// layout cannot be trusted and abort the whole run before any extraction.
// Integrity errors are local to a single file; extraction of the remaining
// files continues and the error is attached to that file's Result.
//
// Every concrete error wraps its category sentinel, so callers can branch
// with a single errors.Is(err, ErrStructural) or errors.Is(err, ErrIntegrity).
var (
	ErrStructural = errors.New("structural error")
	ErrIntegrity  = errors.New("integrity error")

	ErrNoPartitionTable      = fmt.Errorf("%w: no partition table", ErrStructural)
	ErrNoFatPartition        = fmt.Errorf("%w: no FAT16 partition", ErrStructural)
	ErrInvalidBootSector     = fmt.Errorf("%w: invalid boot sector", ErrStructural)
	ErrUnsupportedFilesystem = fmt.Errorf("%w: unsupported filesystem", ErrStructural)

	ErrBadCluster         = fmt.Errorf("%w: bad cluster", ErrIntegrity)
	ErrUnallocatedCluster = fmt.Errorf("%w: file references an unallocated cluster", ErrIntegrity)
	ErrCyclicChain        = fmt.Errorf("%w: cyclic cluster chain", ErrIntegrity)
	ErrTruncatedFile      = fmt.Errorf("%w: file could not be recovered completely", ErrIntegrity)
)
