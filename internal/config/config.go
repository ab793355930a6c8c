// Package config loads evaluator configuration from YAML or CUE files and
// validates it against an embedded CUE schema.
//
// Both formats go through the same schema (#Config in schema.cue), so a
// YAML file and a CUE file describing the same settings decode to the same
// Config. Missing fields take the schema defaults.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/streamcalc/internal/engine"
	"github.com/roach88/streamcalc/internal/rules"
)

//go:embed schema.cue
var schemaSource string

// Defaults applied when a field is absent.
const (
	DefaultMaxIterations = engine.DefaultMaxIterations
	DefaultMaxStall      = engine.DefaultMaxStall
	DefaultPrecedenceCap = rules.DefaultPrecedenceCap
	DefaultTrace         = "off"
	DefaultProfile       = "full"
)

// Config holds the evaluator settings.
type Config struct {
	MaxIterations int                      `json:"max_iterations" yaml:"max_iterations"`
	MaxStall      int                      `json:"max_stall" yaml:"max_stall"`
	PrecedenceCap int                      `json:"precedence_cap" yaml:"precedence_cap"`
	Trace         string                   `json:"trace" yaml:"trace"`
	Profile       string                   `json:"profile" yaml:"profile"`
	Variables     map[string]float64       `json:"variables,omitempty" yaml:"variables,omitempty"`
	Order         []engine.OrderConstraint `json:"order,omitempty" yaml:"order,omitempty"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		MaxStall:      DefaultMaxStall,
		PrecedenceCap: DefaultPrecedenceCap,
		Trace:         DefaultTrace,
		Profile:       DefaultProfile,
	}
}

// Error represents a configuration load or validation failure.
type Error struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes.
const (
	ErrCodeRead   = "E201" // File could not be read
	ErrCodeFormat = "E202" // Unsupported file extension
	ErrCodeParse  = "E203" // YAML or CUE syntax error
	ErrCodeSchema = "E204" // Schema violation
)

// Load reads a configuration file. The format is chosen by extension:
// .yaml and .yml are YAML, .cue is CUE.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeRead, Message: fmt.Sprintf("reading config: %v", err)}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(path, data)
	default:
		return Config{}, &Error{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported config format %q (want .yaml, .yml or .cue)", filepath.Ext(path))}
	}
}

// ParseYAML decodes YAML on top of the defaults and validates the result.
// Unknown keys are rejected.
func ParseYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &Error{Code: ErrCodeParse, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseCUE compiles CUE source, unifies it with #Config and decodes it.
// filename is used for error positions.
func ParseCUE(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return Config{}, err
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Config{}, cueError(ErrCodeParse, err)
	}

	unified := def.Unify(value)
	if err := unified.Err(); err != nil {
		return Config{}, cueError(ErrCodeSchema, err)
	}
	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, cueError(ErrCodeSchema, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks c against the #Config schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}
	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return cueError(ErrCodeSchema, err)
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return cueError(ErrCodeSchema, err)
	}
	return nil
}

func schema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

// cueError converts a CUE error to an Error carrying the first position.
func cueError(code string, err error) *Error {
	e := &Error{Code: code, Message: err.Error()}
	for _, ce := range cueerrors.Errors(err) {
		if pos := ce.Position(); pos.IsValid() {
			e.Pos = pos
			break
		}
	}
	return e
}
