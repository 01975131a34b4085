package order

import (
	"fmt"

	"patternfactory/internal/pkg/errs"
)

// FileSet reports which generated pattern files can be downloaded. The PLT,
// PDS and DXF exports are produced together, so the set holds a single flag
// and the three files can never be observed in different states.
type FileSet struct {
	ready bool
}

func readyFiles() FileSet {
	return FileSet{ready: true}
}

func (f FileSet) PLT() bool { return f.ready }

func (f FileSet) PDS() bool { return f.ready }

func (f FileSet) DXF() bool { return f.ready }

func (f FileSet) All() bool { return f.ready }

// NewFileSet rebuilds a set from stored flags, which must agree.
func NewFileSet(plt, pds, dxf bool) (FileSet, error) {
	if plt != pds || pds != dxf {
		return FileSet{}, errs.NewValueIsInvalidErrorWithCause("files available",
			fmt.Errorf("plt=%t pds=%t dxf=%t must be equal", plt, pds, dxf))
	}
	return FileSet{ready: plt}, nil
}
