package compile

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vlanimate/pkg/elaborate"
	"github.com/matzehuels/vlanimate/pkg/errors"
	"github.com/matzehuels/vlanimate/pkg/spec"
	"github.com/matzehuels/vlanimate/pkg/vega"
	"github.com/matzehuels/vlanimate/pkg/vegalite"
)

// Compiler compiles elaborated animation specs.
type Compiler struct {
	base   vegalite.Compiler
	logger *log.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger stage timings are written to.
func WithLogger(l *log.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Compiler lowering static charts through base.
func New(base vegalite.Compiler, opts ...Option) *Compiler {
	c := &Compiler{
		base:   base,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document parses, elaborates and compiles a spec document.
func (c *Compiler) Document(ctx context.Context, doc []byte) (*vega.Spec, error) {
	s, err := spec.Parse(doc)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, elaborate.Elaborate(s))
}

// Compile compiles an elaborated spec. s is not modified.
func (c *Compiler) Compile(ctx context.Context, s spec.Spec) (*vega.Spec, error) {
	start := time.Now()
	scopes := Scopes(s)
	for _, sc := range scopes {
		if sc.Time.Field == "" {
			return nil, fmt.Errorf("scope %s: %w", sc.ID.LayerID(), errors.MissingField("time encoding", "field"))
		}
	}

	doc, err := spec.Marshal(spec.Sanitize(s))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode sanitized spec")
	}
	base, err := c.base.Compile(ctx, doc)
	if err != nil {
		return nil, err
	}
	g, err := normalize(base)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("base graph compiled", "compiler", c.base.Name(), "marks", len(g.Marks), "duration", time.Since(start))

	order := markNames(g.Marks)
	for _, sc := range scopes {
		if len(sc.Units) == 0 {
			continue
		}
		stageStart := time.Now()
		st, err := newScopeState(g, sc)
		if err != nil {
			return nil, fmt.Errorf("scope %s: %w", sc.ID.LayerID(), err)
		}
		if err := c.compileScope(ctx, st); err != nil {
			return nil, fmt.Errorf("scope %s: %w", sc.ID.LayerID(), err)
		}
		g = st.g
		c.logger.Debug("scope compiled", "scope", sc.ID.LayerID(), "units", len(sc.Units), "signals", len(g.Signals), "duration", time.Since(stageStart))
	}
	g.Marks = restoreOrder(g.Marks, order)

	c.logger.Debug("animation compiled", "scopes", len(scopes), "data", len(g.Data), "signals", len(g.Signals), "duration", time.Since(start))
	return g, nil
}

func (c *Compiler) compileScope(ctx context.Context, st *scopeState) error {
	st.merge(clock(st))
	st.merge(timeScale(st))
	st.merge(pause(st))
	st.merge(selections(st))

	for _, u := range st.Units {
		if len(u.Filters) == 0 {
			continue
		}
		b, err := datasets(st, u)
		if err != nil {
			return err
		}
		if b == nil {
			continue
		}
		st.merge(rescale(st, u, b))
		st.merge(interpolate(st, u, b))
		frag, err := c.enterExit(ctx, st, u)
		if err != nil {
			return err
		}
		st.merge(frag)
	}
	return nil
}

// normalize brings the base graph into its decoded JSON form so that every
// stage sees plain maps, slices and float64 numbers.
func normalize(g *vega.Spec) (*vega.Spec, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeBaseCompiler, "base compiler returned no graph")
	}
	data, err := vega.Marshal(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBaseCompiler, err, "encode base graph")
	}
	out, err := vega.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBaseCompiler, err, "decode base graph")
	}
	return out, nil
}

func markNames(marks []vega.Mark) []string {
	names := make([]string, len(marks))
	for i, m := range marks {
		names[i] = m.Name
	}
	return names
}

// restoreOrder puts top-level marks back into the base graph's drawing order;
// merge moves every replaced mark to the end. Unnamed marks are never
// replaced and keep their sequence. Marks the base graph did not have follow
// in their current order.
func restoreOrder(marks []vega.Mark, order []string) []vega.Mark {
	byName := make(map[string]vega.Mark, len(marks))
	var unnamed, added []vega.Mark
	for _, m := range marks {
		switch {
		case m.Name == "":
			unnamed = append(unnamed, m)
		case slices.Contains(order, m.Name):
			byName[m.Name] = m
		default:
			added = append(added, m)
		}
	}
	out := make([]vega.Mark, 0, len(marks))
	for _, name := range order {
		if name == "" {
			if len(unnamed) > 0 {
				out = append(out, unnamed[0])
				unnamed = unnamed[1:]
			}
			continue
		}
		if m, ok := byName[name]; ok {
			out = append(out, m)
		}
	}
	out = append(out, unnamed...)
	return append(out, added...)
}
