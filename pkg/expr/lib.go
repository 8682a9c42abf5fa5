package expr

import (
	"strings"
	"unicode"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

type lib struct{}

func (lib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		ext.Strings(),
		ext.Lists(),

		cel.Variable("name", cel.StringType),
		cel.Variable("kind", cel.StringType),

		cel.Function("baseName",
			cel.Overload("baseName_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					s, ok := v.Value().(string)
					if !ok {
						return types.NewErr("baseName: invalid argument")
					}

					return types.String(BaseName(s))
				}),
			),
		),
		cel.Function("fold",
			cel.Overload("fold_string", []*cel.Type{cel.StringType}, cel.StringType,
				cel.UnaryBinding(func(v ref.Val) ref.Val {
					s, ok := v.Value().(string)
					if !ok {
						return types.NewErr("fold: invalid argument")
					}

					return types.String(strings.ToUpper(strings.TrimSpace(s)))
				}),
			),
		),
	}
}

func (lib) ProgramOptions() []cel.ProgramOption {
	return nil
}

// BaseName strips a trailing run of digits (and the whitespace before it)
// from a track name.
func BaseName(name string) string {
	trimmed := strings.TrimRightFunc(name, unicode.IsDigit)
	if trimmed == name {
		return strings.TrimSpace(name)
	}

	return strings.TrimSpace(trimmed)
}
