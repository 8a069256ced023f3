package expect

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	label string
	ok    bool
}

func newWidgetRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	require.NoError(t, r.AddType(Type{
		Name: "Widget",
		Identify: func(v any) bool {
			_, ok := v.(*widget)
			return ok
		},
		Inspect: func(v any) string { return "Widget" },
	}))
	require.NoError(t, r.AddAssertion("<Widget> to be ok", func(ctx context.Context, x *Context) error {
		if x.Subject.(*widget).ok {
			return nil
		}
		return x.Fail("", nil)
	}))
	require.NoError(t, r.AddAssertion("<Widget> [not] to be labelled <string>", func(ctx context.Context, x *Context) error {
		has := x.Subject.(*widget).label == x.Args[0].(string)
		if has == x.Not {
			return x.Fail("label is '"+x.Subject.(*widget).label+"'", nil)
		}
		return nil
	}))
	require.NoError(t, r.AddAssertion("<Widget> to be labelled <regexp>", func(ctx context.Context, x *Context) error {
		if x.Args[0].(*regexp.Regexp).MatchString(x.Subject.(*widget).label) {
			return nil
		}
		return x.Fail("", nil)
	}))
	require.NoError(t, r.AddAssertion("<Widget> to mention <string+>", func(ctx context.Context, x *Context) error {
		for _, a := range x.Args {
			if !strings.Contains(x.Subject.(*widget).label, a.(string)) {
				return x.Fail("", nil)
			}
		}
		return nil
	}))
	return r
}

func TestRegistry_Expect(t *testing.T) {
	r := newWidgetRegistry(t)
	ctx := context.Background()
	w := &widget{label: "Hello Webdriver", ok: true}

	assert.NoError(t, r.Expect(ctx, w, "to be ok"))
	assert.NoError(t, r.Expect(ctx, w, "to  be   ok"))
	assert.NoError(t, r.Expect(ctx, w, "to be labelled", "Hello Webdriver"))
	assert.NoError(t, r.Expect(ctx, w, "not to be labelled", "Bye"))
	assert.NoError(t, r.Expect(ctx, w, "to be labelled", regexp.MustCompile(`^Hello`)))
	assert.NoError(t, r.Expect(ctx, w, "to mention", "Hello", "Web"))
}

func TestRegistry_StandardMessages(t *testing.T) {
	r := newWidgetRegistry(t)
	ctx := context.Background()
	w := &widget{label: "Hello"}

	tests := []struct {
		name      string
		assertion string
		args      []any
		want      string
	}{
		{"no args", "to be ok", nil, "expected Widget to be ok"},
		{"string arg", "to be labelled", []any{"It's"}, `expected Widget to be labelled 'It\'s'` + "\n\nlabel is 'Hello'"},
		{"negated", "not to be labelled", []any{"Hello"}, "expected Widget not to be labelled 'Hello'\n\nlabel is 'Hello'"},
		{"regexp", "to be labelled", []any{regexp.MustCompile("Hallo")}, "expected Widget to be labelled /Hallo/"},
		{"variadic", "to mention", []any{"He", "xx"}, "expected Widget to mention 'He', 'xx'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Expect(ctx, w, tt.assertion, tt.args...)
			require.Error(t, err)
			f, ok := AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, f.Error())
		})
	}
}

func TestRegistry_TypeErrors(t *testing.T) {
	r := newWidgetRegistry(t)
	ctx := context.Background()

	t.Run("wrong subject", func(t *testing.T) {
		err := r.Expect(ctx, "just a string", "to be ok")
		require.Error(t, err)
		assert.True(t, IsTypeError(err))
		_, isFailure := AsFailure(err)
		assert.False(t, isFailure)
		assert.Contains(t, err.Error(), "expected 'just a string' to be ok")
		assert.Contains(t, err.Error(), "<string> to be ok")
		assert.Contains(t, err.Error(), "<Widget> to be ok")
	})

	t.Run("wrong arguments", func(t *testing.T) {
		err := r.Expect(ctx, &widget{}, "to be labelled", 42)
		assert.True(t, IsTypeError(err))
	})

	t.Run("missing variadic arguments", func(t *testing.T) {
		err := r.Expect(ctx, &widget{}, "to mention")
		assert.True(t, IsTypeError(err))
	})

	t.Run("too many arguments", func(t *testing.T) {
		err := r.Expect(ctx, &widget{}, "to be ok", "extra")
		assert.True(t, IsTypeError(err))
	})

	t.Run("negating a plain assertion", func(t *testing.T) {
		err := r.Expect(ctx, &widget{}, "not to be ok")
		var unknown *UnknownAssertionError
		assert.True(t, errors.As(err, &unknown))
	})
}

func TestRegistry_UnknownAssertion(t *testing.T) {
	r := New()
	err := r.Expect(context.Background(), 1, "to fly")
	assert.EqualError(t, err, `unknown assertion "to fly"`)
}

func TestRegistry_Registration(t *testing.T) {
	r := newWidgetRegistry(t)
	noop := func(ctx context.Context, x *Context) error { return nil }

	assert.Error(t, r.AddAssertion("<Gadget> to exist", noop), "unknown subject type")
	assert.Error(t, r.AddAssertion("<Widget> to hold <Gadget>", noop), "unknown arg type")
	assert.Error(t, r.AddAssertion("<Widget> to be ok", noop), "duplicate")
	assert.Error(t, r.AddAssertion("<Widget> to be fine", nil), "nil check")
	assert.Error(t, r.AddType(Type{Name: "Widget", Identify: func(any) bool { return false }}))
	assert.Error(t, r.AddType(Type{Name: "NoIdentify"}))

	assert.Contains(t, r.Assertions(), "<Widget> [not] to be labelled <string>")
	assert.Equal(t, "Widget", r.TypeOf(&widget{}))
	assert.Equal(t, "string", r.TypeOf("x"))
	assert.Equal(t, "any", r.TypeOf(3))
}

func TestContext_ErrorModes(t *testing.T) {
	r := newWidgetRegistry(t)
	ctx := context.Background()

	var mode ErrorMode
	require.NoError(t, r.AddAssertion("<Widget> to be ready", func(ctx context.Context, x *Context) error {
		return x.Expect(ctx, mode, x.Subject, "to be labelled", "ready")
	}))

	w := &widget{label: "busy"}

	mode = Bubble
	err := r.Expect(ctx, w, "to be ready")
	assert.Equal(t, "expected Widget to be labelled 'ready'\n\nlabel is 'busy'", err.Error())

	mode = WrapWithContext
	err = r.Expect(ctx, w, "to be ready")
	f, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, "expected Widget to be ready", f.Message)
	assert.Equal(t, "label is 'busy'", f.Diff)
	nested, ok := AsFailure(f.Cause)
	require.True(t, ok)
	assert.Equal(t, "expected Widget to be labelled 'ready'", nested.Message)

	w.label = "ready"
	assert.NoError(t, r.Expect(ctx, w, "to be ready"))
}

func TestContext_WrapKeepsScreenshot(t *testing.T) {
	r := newWidgetRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.AddAssertion("<Widget> to snap", func(ctx context.Context, x *Context) error {
		f := x.Fail("", nil)
		f.Screenshot = "shot.png"
		return f
	}))
	require.NoError(t, r.AddAssertion("<Widget> to snap twice", func(ctx context.Context, x *Context) error {
		return x.Expect(ctx, WrapWithContext, x.Subject, "to snap")
	}))

	f, ok := AsFailure(r.Expect(ctx, &widget{}, "to snap twice"))
	require.True(t, ok)
	assert.Equal(t, "shot.png", f.Screenshot)
}

func TestRegistry_Pending(t *testing.T) {
	r := New()
	require.NoError(t, r.AddAssertion("<Pending> to resolve", func(ctx context.Context, x *Context) error {
		if _, err := x.Subject.(Pending).Resolve(ctx); err != nil {
			return x.Fail("", err)
		}
		return nil
	}))

	boom := errors.New("boom")
	ok := PendingFunc(func(ctx context.Context) (any, error) { return 1, nil })
	bad := PendingFunc(func(ctx context.Context) (any, error) { return nil, boom })

	assert.NoError(t, r.Expect(context.Background(), ok, "to resolve"))
	err := r.Expect(context.Background(), bad, "to resolve")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "expected Pending to resolve", err.Error())
}

type testPlugin struct {
	installs int
	fail     bool
}

func (p *testPlugin) Name() string { return "test-plugin" }

func (p *testPlugin) Install(r *Registry) error {
	p.installs++
	if p.fail {
		return errors.New("nope")
	}
	return nil
}

func TestRegistry_Use(t *testing.T) {
	r := New()
	p := &testPlugin{}

	require.NoError(t, r.Use(p))
	require.NoError(t, r.Use(p))
	assert.Equal(t, 1, p.installs)

	failing := &testPlugin{fail: true}
	r2 := New()
	assert.Error(t, r2.Use(failing))
	failing.fail = false
	assert.NoError(t, r2.Use(failing), "a failed install can be retried")
}

func TestRegistry_ConcurrentExpect(t *testing.T) {
	r := newWidgetRegistry(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Expect(context.Background(), &widget{ok: true}, "to be ok"))
		}()
	}
	wg.Wait()
}
