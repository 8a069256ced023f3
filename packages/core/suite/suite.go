package suite

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// DefaultWaitTimeout applies to waitFor blocks without a timeout.
const DefaultWaitTimeout = 10 * time.Second

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

type File struct {
	Path    string
	Name    string
	URL     string
	Tags    []string
	WaitFor *WaitFor
	Checks  []*Check
}

type WaitFor struct {
	Selector string
	Timeout  time.Duration
}

type Check struct {
	Name     string
	Selector string
	// Expect is the assertion, e.g. "to contain text".
	Expect string
	Args   []any
	Tags   []string
	Skip   string
	Only   bool
	Line   int
}

// Title names the check in reports, falling back to its assertion.
func (c *Check) Title() string {
	if c.Name != "" {
		return c.Name
	}
	if c.Selector == "" {
		return c.Expect
	}
	return c.Selector + " " + c.Expect
}

// ParseError reports a problem at a position in a suite file.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return e.File + ":" + strconv.Itoa(e.Line) + ": " + e.Message
	case e.File != "":
		return e.File + ": " + e.Message
	case e.Line > 0:
		return "line " + strconv.Itoa(e.Line) + ": " + e.Message
	}
	return e.Message
}

// IsSuiteFile reports whether path has a suite file extension.
func IsSuiteFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".webspec.yaml") || strings.HasSuffix(base, ".webspec.yml")
}

func ParseFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(content, path)
}

type rawFile struct {
	Name    string      `yaml:"name"`
	URL     string      `yaml:"url"`
	Tags    []string    `yaml:"tags"`
	WaitFor *rawWaitFor `yaml:"waitFor"`
	Checks  []rawCheck  `yaml:"checks"`
}

type rawWaitFor struct {
	Selector string `yaml:"selector"`
	Timeout  string `yaml:"timeout"`
}

type rawCheck struct {
	Name     string   `yaml:"name"`
	Selector string   `yaml:"selector"`
	Expect   string   `yaml:"expect"`
	Args     []string `yaml:"args"`
	Tags     []string `yaml:"tags"`
	Skip     string   `yaml:"skip"`
	Only     bool     `yaml:"only"`
}

// Parse validates and decodes a suite document. filename is used in errors.
func Parse(content []byte, filename string) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, &ParseError{File: filename, Message: err.Error()}
	}
	if len(root.Content) == 0 {
		return nil, &ParseError{File: filename, Message: "empty suite"}
	}

	if err := validate(root.Content[0]); err != nil {
		return nil, &ParseError{File: filename, Message: err.Error()}
	}

	var raw rawFile
	if err := root.Content[0].Decode(&raw); err != nil {
		return nil, &ParseError{File: filename, Message: err.Error()}
	}

	f := &File{
		Path: filename,
		Name: raw.Name,
		URL:  raw.URL,
		Tags: raw.Tags,
	}
	if f.Name == "" {
		f.Name = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(filename), ".yaml"), ".yml")
		f.Name = strings.TrimSuffix(f.Name, ".webspec")
	}

	if raw.WaitFor != nil {
		w := &WaitFor{Selector: raw.WaitFor.Selector, Timeout: DefaultWaitTimeout}
		if raw.WaitFor.Timeout != "" {
			d, err := time.ParseDuration(raw.WaitFor.Timeout)
			if err != nil {
				return nil, &ParseError{File: filename, Message: fmt.Sprintf("invalid waitFor timeout %q", raw.WaitFor.Timeout)}
			}
			w.Timeout = d
		}
		f.WaitFor = w
	}

	lines := checkLines(root.Content[0])
	for i, rc := range raw.Checks {
		c := &Check{
			Name:     rc.Name,
			Selector: rc.Selector,
			Expect:   strings.Join(strings.Fields(rc.Expect), " "),
			Tags:     rc.Tags,
			Skip:     rc.Skip,
			Only:     rc.Only,
		}
		if i < len(lines) {
			c.Line = lines[i]
		}
		for _, a := range rc.Args {
			arg, err := ParseArg(a)
			if err != nil {
				return nil, &ParseError{File: filename, Line: c.Line, Message: err.Error()}
			}
			c.Args = append(c.Args, arg)
		}
		f.Checks = append(f.Checks, c)
	}
	return f, nil
}

func validate(doc *yaml.Node) error {
	var generic any
	if err := doc.Decode(&generic); err != nil {
		return err
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(generic))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
}

// checkLines returns the line of each entry of the checks sequence.
func checkLines(doc *yaml.Node) []int {
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "checks" {
			continue
		}
		var lines []int
		for _, item := range doc.Content[i+1].Content {
			lines = append(lines, item.Line)
		}
		return lines
	}
	return nil
}

var regexpArg = regexp.MustCompile(`^/(.*)/([ims]*)$`)

// ParseArg converts a suite argument. "/pattern/flags" becomes a
// *regexp.Regexp, anything else stays a string.
func ParseArg(s string) (any, error) {
	m := regexpArg.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return s, nil
	}
	pattern := m[1]
	if m[2] != "" {
		pattern = "(?" + m[2] + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regexp argument %s: %w", s, err)
	}
	return re, nil
}
