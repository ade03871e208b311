package graphql

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const schemaSourceName = "schema.graphql"

// SDL renders the contract in declaration order after validating it with
// gqlparser.
func SDL() (string, error) {
	sdl := RenderSDL(Objects(nil))
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: schemaSourceName, Input: sdl}); err != nil {
		return "", fmt.Errorf("validate schema: %w", err)
	}
	return sdl, nil
}

// RenderSDL writes objects as type definitions in declaration order.
func RenderSDL(objects []Object) string {
	var sb strings.Builder
	for i, obj := range objects {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "type %s {\n", obj.Name)
		for _, field := range obj.Fields {
			sb.WriteString("  ")
			sb.WriteString(field.Name)
			if len(field.Args) > 0 {
				parts := make([]string, len(field.Args))
				for j, arg := range field.Args {
					parts[j] = arg.Name + ": " + arg.sdlType()
				}
				sb.WriteString("(" + strings.Join(parts, ", ") + ")")
			}
			sb.WriteString(": ")
			sb.WriteString(field.Type.String())
			sb.WriteString("\n")
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}

// String renders the reference in SDL notation.
func (t TypeRef) String() string {
	out := t.Name
	if t.List {
		out = "[" + out + "!]"
	}
	if !t.Nullable {
		out += "!"
	}
	return out
}

func (a Arg) sdlType() string {
	if a.Required {
		return a.Type + "!"
	}
	return a.Type
}
