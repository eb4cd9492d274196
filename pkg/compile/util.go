package compile

import (
	"slices"

	"github.com/matzehuels/vlanimate/pkg/vega"
)

func sortedKeys(o vega.Object) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
