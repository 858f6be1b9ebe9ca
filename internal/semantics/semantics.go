// Package semantics runs the whole-program checks over the fully resolved
// module set: relationship soundness, state-machine reachability, access
// rule consistency, and field/default well-formedness. The four checkers
// are independent; none reads another's output, so all of them always run
// and their diagnostics merge in the shared sink.
package semantics

import (
	"context"

	"github.com/dazzle-lang/dazzle/internal/ctxlog"
	"github.com/dazzle-lang/dazzle/internal/diag"
	"github.com/dazzle-lang/dazzle/internal/resolver"
)

// Check runs every checker over the resolution.
func Check(ctx context.Context, res *resolver.Resolution, sink *diag.Sink) {
	logger := ctxlog.FromContext(ctx)

	checkRelationships(res, sink)
	checkStateMachines(res, sink)
	checkAccessRules(res, sink)
	checkFields(res, sink)

	logger.Debug("semantic checks complete", "diagnostics", len(sink.List()))
}
