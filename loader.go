package formflow

import (
	internalLoader "github.com/goliatone/go-formflow/internal/flowio/loader"
	"github.com/goliatone/go-formflow/pkg/flowio"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...flowio.LoaderOption) flowio.Loader {
	cfg := flowio.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}
