package pantryapp

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump writes label and v to stderr, prefixed with the caller's location.
// Used behind PANTRY_DEBUG to inspect controller state.
func Dump(label string, v ...any) {
	_, file, line, _ := runtime.Caller(1)
	fdump(os.Stderr, fmt.Sprintf("%s:%d: %s", file, line, label), v...)
}

func fdump(w io.Writer, header string, v ...any) {
	fmt.Fprintln(w, header)
	dumpConfig.Fdump(w, v...)
}
