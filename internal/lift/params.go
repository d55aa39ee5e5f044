package lift

import (
	"fmt"
	"strings"
)

// FnParam is one bound parameter: the slot it lands in and an optional name
// and declared type from metadata.
type FnParam struct {
	Index int
	Name  string
	Type  string
}

func (p FnParam) String() string {
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("param_%d", p.Index)
	}
	if p.Type != "" {
		return p.Type + " " + name
	}
	return name
}

// FnParams is the parameter description rendered by the SetupParameters
// node.
type FnParams struct {
	Params      []FnParam
	NumFixed    int
	NumOptional int
	HasTypeArgs bool
}

func (p *FnParams) String() string {
	if p == nil || len(p.Params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.Params)+1)
	if p.HasTypeArgs {
		parts = append(parts, "<T>")
	}
	for _, param := range p.Params {
		parts = append(parts, param.String())
	}
	return strings.Join(parts, ", ")
}
