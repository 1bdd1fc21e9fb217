package state

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"golang.org/x/exp/slices"
)

const (
	DefaultPattern     = "appendlist.hcl"
	DefaultWorkers     = 4
	DefaultPerWorker   = 25
	DefaultParallelism = 4
	// MaxValues bounds workers * per_worker
	MaxValues = 1 << 24
)

// Config of a single run. Attributes missing from a config file keep
// their previous value
type Config struct {
	Workers     int   `hcl:"workers,optional"`
	PerWorker   int   `hcl:"per_worker,optional"`
	Probes      []int `hcl:"probes,optional"`
	Parallelism int   `hcl:"parallelism,optional"`
	Verify      bool  `hcl:"verify,optional"`
}

func NewConfig() *Config {
	return &Config{
		Workers:     DefaultWorkers,
		PerWorker:   DefaultPerWorker,
		Probes:      []int{10, 100},
		Parallelism: DefaultParallelism,
	}
}

// Load decodes every file matching pattern on top of the default config.
// Relative patterns are resolved against cwd. Matches are applied in lexical
// order so later files win. A pattern that matches nothing yields the
// defaults, with a warning if the pattern was required
func Load(parser *hclparse.Parser, cwd, pattern string, required bool) (*Config, hcl.Diagnostics) {
	config := NewConfig()
	diagnostics := make(hcl.Diagnostics, 0)
	root, relPattern, err := splitPattern(cwd, pattern)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf(`couldn't resolve pattern "%s"`, pattern),
			Detail:   err.Error(),
		}}
	}

	matches, err := doublestar.Glob(os.DirFS(root), relPattern)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf(`pattern "%s" is malformed`, pattern),
			Detail:   err.Error(),
		}}
	}

	if len(matches) == 0 && required {
		diagnostics = append(diagnostics, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  fmt.Sprintf(`pattern "%s" doesn't match any file`, pattern),
			Detail:   "using the default config",
		})
	}

	slices.Sort(matches)
	ctx := EvalContext()
	for _, match := range matches {
		file, diags := parser.ParseHCLFile(filepath.Join(root, match))
		diagnostics = append(diagnostics, diags...)
		if diags.HasErrors() {
			return nil, diagnostics
		}

		diags = gohcl.DecodeBody(file.Body, ctx, config)
		diagnostics = append(diagnostics, diags...)
		if diags.HasErrors() {
			return nil, diagnostics
		}
	}

	if diags := config.Validate(); diags.HasErrors() {
		return nil, append(diagnostics, diags...)
	}

	return config, diagnostics
}

// splitPattern resolves pattern against cwd and splits it into the longest
// directory without glob characters and the slash separated pattern below it
func splitPattern(cwd, pattern string) (string, string, error) {
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(escape(cwd), pattern)
	}

	abs, err := filepath.Abs(pattern)
	if err != nil {
		return "", "", err
	}

	volume := filepath.VolumeName(abs)
	segments := strings.Split(strings.TrimPrefix(filepath.ToSlash(abs[len(volume):]), "/"), "/")
	literal := 0
	// the last segment always belongs to the pattern, doublestar.Glob needs one
	for literal < len(segments)-1 && !strings.ContainsAny(segments[literal], globChars) {
		literal++
	}

	root := volume + string(filepath.Separator) + filepath.Join(segments[:literal]...)
	return root, strings.Join(segments[literal:], "/"), nil
}

const globChars = `*?[]{}\`

// escape glob characters so that a directory name is matched literally
func escape(dir string) string {
	var builder strings.Builder
	for _, r := range dir {
		if strings.ContainsRune(globChars, r) {
			builder.WriteRune('\\')
		}
		builder.WriteRune(r)
	}

	return builder.String()
}

// EvalContext provides the variables and functions available to config files
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cpus": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
		Functions: map[string]function.Function{
			"min": stdlib.MinFunc,
			"max": stdlib.MaxFunc,
		},
	}
}

func (config Config) Validate() hcl.Diagnostics {
	diagnostics := make(hcl.Diagnostics, 0)
	if config.Workers < 1 {
		diagnostics = append(diagnostics, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  `"workers" must be at least 1`,
			Detail:   fmt.Sprintf("got %d", config.Workers),
		})
	}

	if config.PerWorker < 0 {
		diagnostics = append(diagnostics, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  `"per_worker" cannot be negative`,
			Detail:   fmt.Sprintf("got %d", config.PerWorker),
		})
	}

	if config.Workers > 0 && config.PerWorker > MaxValues/config.Workers {
		diagnostics = append(diagnostics, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  fmt.Sprintf(`"workers" * "per_worker" cannot exceed %d`, MaxValues),
			Detail:   fmt.Sprintf("got %d workers with %d values each", config.Workers, config.PerWorker),
		})
	}

	if config.Parallelism < 1 {
		diagnostics = append(diagnostics, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  `"parallelism" must be at least 1`,
			Detail:   fmt.Sprintf("got %d", config.Parallelism),
		})
	}

	return diagnostics
}

// Encode renders config as an HCL file that Load accepts
func (config Config) Encode() []byte {
	file := hclwrite.NewEmptyFile()
	body := file.Body()
	body.SetAttributeValue("workers", cty.NumberIntVal(int64(config.Workers)))
	body.SetAttributeValue("per_worker", cty.NumberIntVal(int64(config.PerWorker)))

	probes := cty.ListValEmpty(cty.Number)
	if len(config.Probes) > 0 {
		values := make([]cty.Value, len(config.Probes))
		for i, probe := range config.Probes {
			values[i] = cty.NumberIntVal(int64(probe))
		}
		probes = cty.ListVal(values)
	}

	body.SetAttributeValue("probes", probes)
	body.SetAttributeValue("parallelism", cty.NumberIntVal(int64(config.Parallelism)))
	body.SetAttributeValue("verify", cty.BoolVal(config.Verify))
	return file.Bytes()
}
