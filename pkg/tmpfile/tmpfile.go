// Package tmpfile generates collision-free temp file paths.
// Paths are unique per call, so concurrent operations never share
// scratch state.
package tmpfile

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Name returns a fresh path in the system temp dir with the given
// postfix (usually a file extension, dot included). The file itself is
// not created.
func Name(postfix string) string {
	return filepath.Join(os.TempDir(), uuid.NewString()+postfix)
}
