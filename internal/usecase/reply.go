package usecase

import (
	"fmt"
	"strconv"

	"github.com/wyg1997/tino/internal/domain"
)

// UsageText is the reply for missing code, unsupported languages and /tio
const UsageText = `Usage: /tio<lang> <code>
e.g. /tiopython3 print("Hello, World!")

Please refer to https://github.com/TryItOnline/tryitonline/tree/master/wrappers for the list of supported languages.`

// FormatResult renders output followed by the exit status suffix. Output is
// kept verbatim; length limits belong to the transport.
func FormatResult(res domain.ExecutionResult) string {
	return fmt.Sprintf("%s[exit(%d) in %ss]",
		res.Output, res.ExitCode, strconv.FormatFloat(res.WallTimeSeconds, 'f', -1, 64))
}

// FormatFailure renders an execution failure for the user
func FormatFailure(err error) string {
	if err == nil {
		return "ERROR: unknown failure"
	}
	return "ERROR: " + err.Error()
}
