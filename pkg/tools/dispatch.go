package tools

import (
	"context"
	"fmt"

	"github.com/krsjen/github-project-mcp/pkg/service"
)

// Execute runs a named tool end to end: normalize the raw arguments,
// apply per-tool coercions, validate against the schema, dispatch, and
// wrap the outcome in an envelope. It never returns a raw error.
func (r *Registry) Execute(ctx context.Context, svc *service.Service, name string, rawArgs any) Envelope {
	tool, ok := r.Get(name)
	if !ok {
		return NewError(CodeResourceNotFound, fmt.Sprintf("unknown tool: %s", name))
	}

	args, err := NormalizeArguments(rawArgs)
	if err != nil {
		return NewError(CodeInvalidRequest, err.Error())
	}
	coerce(name, args)

	if err := ValidateArgs(name, tool.Def.InputSchema, args); err != nil {
		return FromError(err)
	}

	result, extra, err := tool.Handler(ctx, svc, args)
	if err != nil {
		r.logger.Error("tool call failed", "tool", name, "error", err)
		return FromError(err)
	}
	return NewSuccess(result, extra...)
}
