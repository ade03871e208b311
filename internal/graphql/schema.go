package graphql

import (
	"fmt"

	gql "github.com/graphql-go/graphql"
)

var scalars = map[string]*gql.Scalar{
	"Int":     gql.Int,
	"String":  gql.String,
	"Boolean": gql.Boolean,
	"ID":      gql.ID,
}

// NewExecutableSchema builds the executable schema from the field records,
// binding each root field to cfg.Resolvers.
func NewExecutableSchema(cfg Config) (gql.Schema, error) {
	if cfg.Resolvers == nil {
		return gql.Schema{}, fmt.Errorf("graphql: resolvers are required")
	}
	return buildSchema(Objects(cfg.Resolvers))
}

func buildSchema(objects []Object) (gql.Schema, error) {
	types := make(map[string]gql.Output, len(scalars)+len(objects))
	for name, t := range scalars {
		types[name] = t
	}

	built := make(map[string]*gql.Object, len(objects))
	for _, obj := range objects {
		fields := make(gql.Fields, len(obj.Fields))
		for _, field := range obj.Fields {
			out, err := outputType(types, field.Type)
			if err != nil {
				return gql.Schema{}, fmt.Errorf("%s.%s: %w", obj.Name, field.Name, err)
			}
			args, err := argumentConfig(field.Args)
			if err != nil {
				return gql.Schema{}, fmt.Errorf("%s.%s: %w", obj.Name, field.Name, err)
			}
			fields[field.Name] = &gql.Field{
				Name:    field.Name,
				Type:    out,
				Args:    args,
				Resolve: adaptResolver(field.Resolve),
			}
		}
		object := gql.NewObject(gql.ObjectConfig{Name: obj.Name, Fields: fields})
		types[obj.Name] = object
		built[obj.Name] = object
	}

	query, ok := built["Query"]
	if !ok {
		return gql.Schema{}, fmt.Errorf("graphql: Query type is required")
	}
	return gql.NewSchema(gql.SchemaConfig{Query: query, Mutation: built["Mutation"]})
}

func outputType(types map[string]gql.Output, ref TypeRef) (gql.Output, error) {
	base, ok := types[ref.Name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", ref.Name)
	}
	out := base
	if ref.List {
		out = gql.NewList(gql.NewNonNull(base))
	}
	if !ref.Nullable {
		out = gql.NewNonNull(out)
	}
	return out, nil
}

func argumentConfig(args []Arg) (gql.FieldConfigArgument, error) {
	if len(args) == 0 {
		return nil, nil
	}
	cfg := make(gql.FieldConfigArgument, len(args))
	for _, arg := range args {
		scalar, ok := scalars[arg.Type]
		if !ok {
			return nil, fmt.Errorf("argument %q: unknown scalar %q", arg.Name, arg.Type)
		}
		var in gql.Input = scalar
		if arg.Required {
			in = gql.NewNonNull(in)
		}
		cfg[arg.Name] = &gql.ArgumentConfig{Type: in}
	}
	return cfg, nil
}

func adaptResolver(fn ResolveFunc) gql.FieldResolveFn {
	if fn == nil {
		return nil
	}
	return func(p gql.ResolveParams) (any, error) {
		v, err := fn(p.Context, Args(p.Args))
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
