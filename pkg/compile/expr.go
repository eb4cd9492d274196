package compile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matzehuels/vlanimate/internal/jsonx"
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var quoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// str renders s as a single-quoted expression string literal.
func str(s string) string { return "'" + quoter.Replace(s) + "'" }

// access renders a field access on obj ("datum", "datum.next"). Dotted
// fields are nested paths, as in field references.
func access(obj, field string) string {
	var b strings.Builder
	b.WriteString(obj)
	for _, part := range strings.Split(field, ".") {
		if identifier.MatchString(part) {
			b.WriteString("." + part)
		} else {
			b.WriteString("[" + strconv.Quote(part) + "]")
		}
	}
	return b.String()
}

func call(fn string, args ...string) string {
	return fn + "(" + strings.Join(args, ", ") + ")"
}

func scaleCall(scale, v string) string { return call("scale", str(scale), v) }

// literal renders a JSON value as an expression literal.
func literal(v any) string {
	data, err := jsonx.Encode(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func listOf(items []string) string { return "[" + strings.Join(items, ", ") + "]" }
