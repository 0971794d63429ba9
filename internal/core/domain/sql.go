package domain

// ErrorSeverityThreshold is the highest message severity that is still informational.
const ErrorSeverityThreshold = 10

// Stream identifies which output stream of the SQL client produced a line.
type Stream int

const (
	// StreamStdout is standard output.
	StreamStdout Stream = iota
	// StreamStderr is standard error.
	StreamStderr
)

// String returns the stream name.
func (s Stream) String() string {
	if s == StreamStderr {
		return "stderr"
	}
	return "stdout"
}

// OutputLine is one line of SQL client output.
type OutputLine struct {
	Stream   Stream
	Text     string
	Severity int
}

// SQLRequest is a script to execute against a database.
// Params are exposed to the script as $(name) variables.
type SQLRequest struct {
	Database string
	Script   string
	Params   map[string]string
}

// ExecResult summarizes a finished SQL client invocation.
type ExecResult struct {
	ExitCode    int
	MaxSeverity int
}

// Failed reports whether the invocation exited non-zero or emitted an error-level message.
func (r ExecResult) Failed() bool {
	return r.ExitCode != 0 || r.MaxSeverity > ErrorSeverityThreshold
}

// BackupFile is one entry of a backup's file list.
type BackupFile struct {
	LogicalName  string
	PhysicalName string
}

// FileRelocation moves a logical file to a new physical path during restore.
type FileRelocation struct {
	LogicalName string
	Path        string
}
