package overlay

import (
	"fmt"

	"github.com/walteh/spanviz/pkg/span"
)

// UnresolvedNodeError reports an index lookup for a node that is not part
// of the overlay. This is a contract violation in the consumer (a made-up
// ID, or a node that carries no span), not a condition the resolver can
// produce internally; treat it like an assertion failure.
type UnresolvedNodeError struct {
	Node span.NodeID
}

func (e *UnresolvedNodeError) Error() string {
	return fmt.Sprintf("node %d is not part of this overlay", e.Node)
}
