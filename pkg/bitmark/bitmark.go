package bitmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"bitmark-hq/compiler/pkg/bitmark/ast"
	bmErrors "bitmark-hq/compiler/pkg/bitmark/errors"
	"bitmark-hq/compiler/pkg/bitmark/lexer"
	"bitmark-hq/compiler/pkg/bitmark/parser"
	"bitmark-hq/compiler/pkg/bitmark/registry"
	"bitmark-hq/compiler/pkg/bitmark/token"
	"bitmark-hq/compiler/pkg/telemetry/tracing"
)

// Recorder receives the outcome of every compilation. The Prometheus
// collector of package metrics implements it.
type Recorder interface {
	RecordCompile(duration time.Duration, doc *ast.Document, diags *bmErrors.DiagnosticList, err error)
}

// Result is the outcome of compiling one document.
type Result struct {
	// File is the name the document was compiled under, used in diagnostic
	// locations. It is empty for anonymous sources.
	File string

	// Document is the compiled tree.
	Document *ast.Document

	// Diagnostics holds the warnings and errors of every bit, with source
	// context.
	Diagnostics *bmErrors.DiagnosticList

	// Duration is the wall time of the compilation.
	Duration time.Duration
}

// Dropped returns the number of bits removed because of a fatal header.
func (r *Result) Dropped() int {
	return len(r.Document.Errors)
}

// JSON encodes the compiled document.
func (r *Result) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(r.Document, "", "  ")
	}
	return json.Marshal(r.Document)
}

// Compiler compiles bitmark markup. A Compiler is safe for concurrent use.
type Compiler struct {
	reg      *registry.Registry
	tokenize token.Tokenizer
	maxDepth int
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry sets the bit type registry. The embedded registry is used by
// default.
func WithRegistry(reg *registry.Registry) Option {
	return func(c *Compiler) { c.reg = reg }
}

// WithTokenizer replaces the reference tokenizer of package lexer.
func WithTokenizer(t token.Tokenizer) Option {
	return func(c *Compiler) { c.tokenize = t }
}

// WithMaxDepth sets the maximum tag chain nesting. Zero keeps the parser
// default.
func WithMaxDepth(depth int) Option {
	return func(c *Compiler) { c.maxDepth = depth }
}

// WithRecorder sets the recorder notified after every compilation.
func WithRecorder(r Recorder) Option {
	return func(c *Compiler) { c.recorder = r }
}

// WithTracer sets the tracer. By default spans go to the global tracer
// provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Compiler) { c.tracer = t }
}

// NewCompiler creates a compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.reg == nil {
		c.reg = registry.Default()
	}
	if c.tokenize == nil {
		c.tokenize = lexer.Tokenize
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracing.InstrumentationName)
	}
	return c
}

// Registry returns the registry the compiler reads bit types from.
func (c *Compiler) Registry() *registry.Registry {
	return c.reg
}

// Compile compiles src. file names the source in diagnostics and may be
// empty. An error is returned only when ctx is done or the tokenizer
// rejects the document; malformed content yields diagnostics.
func (c *Compiler) Compile(ctx context.Context, file string, src []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "bitmark.compile")
	defer span.End()
	tracing.SetSourceAttributes(span, file, len(src))

	start := time.Now()
	res, err := c.compile(ctx, file, string(src))
	duration := time.Since(start)

	if c.recorder != nil {
		var (
			doc   *ast.Document
			diags *bmErrors.DiagnosticList
		)
		if res != nil {
			doc, diags = res.Document, res.Diagnostics
		}
		c.recorder.RecordCompile(duration, doc, diags, err)
	}

	tracing.SetError(span, err)
	if err != nil {
		return nil, err
	}

	res.Duration = duration
	tracing.SetResultAttributes(span, len(res.Document.Bits), res.Dropped(),
		res.Diagnostics.Count(), len(res.Diagnostics.Errors()))
	for _, bit := range res.Document.Bits {
		tracing.AddBitEvent(span, bit.Type, bit.BitLevel)
	}
	return res, nil
}

func (c *Compiler) compile(ctx context.Context, file, src string) (*Result, error) {
	_, span := c.tracer.Start(ctx, "bitmark.tokenize")
	tokens, err := c.tokenize(src, token.RuleDocument)
	tracing.SetError(span, err)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize document: %w", err)
	}

	_, span = c.tracer.Start(ctx, "bitmark.parse")
	defer span.End()

	p := parser.NewParser(c.reg).WithTokenizer(c.tokenize).WithFile(file)
	if c.maxDepth > 0 {
		p.WithMaxDepth(c.maxDepth)
	}
	doc, diags := p.ParseTokens(tokens)
	return &Result{
		File:        file,
		Document:    doc,
		Diagnostics: diags.WithContext(src, parser.ContextLines),
	}, nil
}

// CompileFile reads and compiles the file at path.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return c.Compile(ctx, path, src)
}

// Compile compiles src with a compiler built from opts.
func Compile(ctx context.Context, src []byte, opts ...Option) (*Result, error) {
	return NewCompiler(opts...).Compile(ctx, "", src)
}

// CompileString compiles src with a compiler built from opts.
func CompileString(ctx context.Context, src string, opts ...Option) (*Result, error) {
	return NewCompiler(opts...).Compile(ctx, "", []byte(src))
}

// CompileFile reads and compiles the file at path with a compiler built from
// opts.
func CompileFile(ctx context.Context, path string, opts ...Option) (*Result, error) {
	return NewCompiler(opts...).CompileFile(ctx, path)
}
