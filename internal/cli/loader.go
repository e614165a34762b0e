package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/roach88/tinyql/internal/queryfile"
	"github.com/roach88/tinyql/internal/store"
	"github.com/roach88/tinyql/internal/value"
	"github.com/roach88/tinyql/ql"
)

// LoadError represents an error that occurred while loading a query,
// a database or its input.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // --filter matched no scenario files
	ErrCodeReadFailed  = "E004" // Input could not be read
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeNotAFile    = "E006" // Path is a directory
	ErrCodeWriteFailed = "E007" // Store or file write error

	// Query errors
	ErrCodeQuerySyntax  = "E201" // Query does not match the grammar
	ErrCodeQueryDecode  = "E202" // Query file is not valid JSON/YAML/CUE
	ErrCodeUnknownTable = "E203" // --table names a table with no documents
	ErrCodeStore        = "E204" // Store could not be opened or read
	ErrCodeInvalidInput = "E205" // load input is neither a list nor an object
)

// exitCodeFor maps a load error code to the process exit code.
// Only malformed queries are failures; everything else is a command error.
func exitCodeFor(code string) int {
	switch code {
	case ErrCodeQuerySyntax, ErrCodeQueryDecode:
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// querySource describes where the query text comes from.
type querySource struct {
	Arg    string // positional argument; "-" reads stdin
	File   string // --file
	Format string // --query-format; empty infers from the file name or defaults to json
}

// loadQuery reads the query from the argument, stdin or a file.
func loadQuery(src querySource, stdin io.Reader) (any, error) {
	if src.File != "" {
		if src.Arg != "" {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: "a query argument and --file are mutually exclusive"}
		}
		return loadQueryFile(src)
	}

	format := queryfile.FormatJSON
	if src.Format != "" {
		f, err := queryfile.ParseFormat(src.Format)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		format = f
	}

	switch src.Arg {
	case "":
		return map[string]any{}, nil
	case "-":
		q, err := queryfile.Read(stdin, format)
		return q, decodeFailure(err)
	default:
		q, err := queryfile.Decode([]byte(src.Arg), format)
		return q, decodeFailure(err)
	}
}

func loadQueryFile(src querySource) (any, error) {
	info, err := os.Stat(src.File)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", src.File), Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotAFile, Message: fmt.Sprintf("query path is not a file: %s", src.File)}
	}

	if src.Format == "" {
		q, err := queryfile.ReadFile(src.File)
		return q, decodeFailure(err)
	}

	format, err := queryfile.ParseFormat(src.Format)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	f, err := os.Open(src.File)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: "cannot open query file", Err: err}
	}
	defer f.Close()
	q, err := queryfile.Read(f, format)
	return q, decodeFailure(err)
}

func decodeFailure(err error) error {
	if err == nil {
		return nil
	}
	if queryfile.IsDecodeError(err) {
		return &LoadError{Code: ErrCodeQueryDecode, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeReadFailed, Message: "cannot read query", Err: err}
}

// compileQuery compiles q, turning syntax errors into a LoadError that
// carries the issues.
func compileQuery(q any) (ql.Predicate, []ql.Issue, error) {
	match, err := ql.Compile(q)
	if err == nil {
		return match, nil, nil
	}
	var qe *ql.QuerySyntaxError
	if errors.As(err, &qe) {
		return nil, qe.Issues, &LoadError{Code: ErrCodeQuerySyntax, Message: qe.Error()}
	}
	return nil, nil, &LoadError{Code: ErrCodeGeneric, Message: "compile query", Err: err}
}

// openDatabase opens an existing database read-only.
func openDatabase(path string) (*store.Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database file does not exist: %s", path), Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotAFile, Message: fmt.Sprintf("database path is not a file: %s", path)}
	}
	st, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeStore, Message: "cannot open database", Err: err}
	}
	return st, nil
}

// resolveTable checks that an explicitly named table exists.
// An empty name selects the default table, which may be empty.
func resolveTable(ctx context.Context, st *store.Store, table string) (string, error) {
	if table == "" {
		return store.DefaultTable, nil
	}
	ok, err := st.HasTable(ctx, table)
	if err != nil {
		return "", &LoadError{Code: ErrCodeStore, Message: "cannot check table", Err: err}
	}
	if ok {
		return table, nil
	}
	tables, err := st.Tables(ctx)
	if err != nil {
		return "", &LoadError{Code: ErrCodeStore, Message: "cannot list tables", Err: err}
	}
	return "", &LoadError{
		Code:    ErrCodeUnknownTable,
		Message: fmt.Sprintf("unknown table %q (available tables: %s)", table, strings.Join(tables, ", ")),
	}
}

// loadInput reads the documents piped to the load command.
func loadInput(r io.Reader) (any, error) {
	v, err := value.DecodeReader(r)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: "cannot read input", Err: err}
	}
	return v, nil
}

// failLoad reports a LoadError (or any other error) through the formatter.
func failLoad(f *OutputFormatter, err error, details any) error {
	var le *LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Err != nil {
			msg = fmt.Sprintf("%s: %v", le.Message, le.Err)
		}
		_ = f.Error(le.Code, msg, details)
		return WrapExitError(exitCodeFor(le.Code), le.Code, err)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, "command failed", err, details)
}
