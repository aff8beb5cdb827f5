package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/histx/internal/dataset"
)

// Parser reads one tabular file format into a Dataset.
type Parser interface {
	CanParse(filename string) bool
	Parse(name string, r io.Reader, opt dataset.Options) (*dataset.Dataset, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a file extension no parser handles.
var ErrUnsupported = errors.New("unsupported file format")

// ParseError reports a malformed input file.
type ParseError struct {
	File string
	Line int // 0 when unknown
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Lookup returns the parser for a filename, chosen by extension.
func Lookup(filename string) (Parser, error) {
	for _, p := range registry {
		if p.CanParse(filename) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(filename))
}

// Parse parses in-memory file content; name selects the parser.
func Parse(name string, data []byte, opt dataset.Options) (*dataset.Dataset, error) {
	p, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Parse(filepath.Base(name), bytes.NewReader(data), opt)
}

// ParseFile opens and parses a file from disk.
func ParseFile(path string, opt dataset.Options) (*dataset.Dataset, error) {
	p, err := Lookup(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return p.Parse(filepath.Base(path), f, opt)
}

func init() {
	Register(csvParser{})
	Register(xlsxParser{})
}
