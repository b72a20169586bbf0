// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"fmt"
	"strings"
)

// StaticBackend answers every request locally with a short placeholder built
// from the first line of the instruction. It is used for dry runs and demos
// without network access.
type StaticBackend struct{}

// Complete returns a deterministic placeholder.
func (StaticBackend) Complete(ctx context.Context, prompt string, rc RequestContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &BackendError{Kind: KindNetwork, Provider: "static", Err: err}
	}
	heading := strings.TrimSpace(strings.SplitN(prompt, "\n", 2)[0])
	return fmt.Sprintf("[%s] %s\n\nGenerated offline; no backend was contacted.", rc.OutputLanguage, heading), nil
}
