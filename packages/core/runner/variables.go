package runner

import (
	"github.com/abdul-hamid-achik/webspec/packages/core/env"
	"github.com/abdul-hamid-achik/webspec/packages/core/suite"
)

// interpolate returns a copy of file with {{variable}} placeholders in its
// URL, selectors, names and string arguments resolved. Regexp arguments
// are compiled at parse time and left alone.
func interpolate(res *env.Resolver, file *suite.File) *suite.File {
	if res == nil {
		return file
	}

	out := *file
	out.URL = res.Resolve(file.URL)
	if file.WaitFor != nil {
		w := *file.WaitFor
		w.Selector = res.Resolve(w.Selector)
		out.WaitFor = &w
	}

	out.Checks = make([]*suite.Check, len(file.Checks))
	for i, c := range file.Checks {
		cc := *c
		cc.Name = res.Resolve(c.Name)
		cc.Selector = res.Resolve(c.Selector)
		if c.Args != nil {
			cc.Args = make([]any, len(c.Args))
			for j, a := range c.Args {
				if s, ok := a.(string); ok {
					a = res.Resolve(s)
				}
				cc.Args[j] = a
			}
		}
		out.Checks[i] = &cc
	}
	return &out
}
