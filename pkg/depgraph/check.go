package depgraph

import (
	"strings"

	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/vega"
)

// maxReported bounds the references listed in a Check error.
const maxReported = 10

// Check reports every reference in g to a dataset, signal or scale that g
// does not define.
func Check(g *vega.Spec) error {
	return Build(g).Err()
}

// Err returns an INVALID_SPEC error listing the unresolved references, or
// nil when every reference resolves.
func (g *Graph) Err() error {
	if len(g.unresolved) == 0 {
		return nil
	}
	var parts []string
	for i, u := range g.unresolved {
		if i == maxReported {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, u.String())
	}
	return errors.New(errors.ErrCodeInvalidSpec, "%d unresolved references: %s",
		len(g.unresolved), strings.Join(parts, ", "))
}
