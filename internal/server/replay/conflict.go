package replay

import (
	"errors"

	"github.com/clinovo/medsync/internal/server/storage"
)

// Classify labels a failed write. A uniqueness violation from the store
// means the action most likely was already applied in an earlier
// submission of the same batch; everything else is an ordinary failure.
// Classification only labels, it never retries or resolves: resolution is
// the client's call.
func Classify(err error) (conflict bool, message string) {
	return errors.Is(err, storage.ErrDuplicate), err.Error()
}
