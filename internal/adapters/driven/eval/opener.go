// Package eval routes evaluation sources to their stores: YAML files by
// extension, anything else as a spreadsheet id.
package eval

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/eval/sheets"
	"github.com/custodia-labs/coursemate-cli/internal/adapters/driven/eval/yamlfile"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// Ensure Opener implements the interface.
var _ driven.EvalStoreOpener = (*Opener)(nil)

// Opener picks the yamlfile or sheets store for a source.
type Opener struct {
	Files  driven.EvalStoreOpener
	Sheets driven.EvalStoreOpener
}

// NewOpener returns an opener with the default file and sheet backends.
func NewOpener() *Opener {
	return &Opener{
		Files:  yamlfile.Opener{},
		Sheets: &sheets.Opener{},
	}
}

// IsFile reports whether source names a YAML cases file.
func IsFile(source string) bool {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Open dispatches on the source.
func (o *Opener) Open(ctx context.Context, source, worksheet string) (driven.EvalStore, error) {
	if IsFile(source) {
		return o.Files.Open(ctx, source, worksheet)
	}
	return o.Sheets.Open(ctx, source, worksheet)
}
