package utils

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const maxLogLen = 256

// WrapErrWithLog attaches a trimmed, single-line excerpt of a command's
// output to err. Nil errors stay nil.
func WrapErrWithLog(err error, msg, log string) error {
	if err == nil {
		return nil
	}

	if strings.TrimSpace(log) == "" {
		return errors.Wrap(err, msg)
	}

	return errors.Wrapf(err, "%v %v", msg, GetLogErrMsg(log, "log"))
}

func GetLogErrMsg(s string, logLabel string) string {
	logToInclude := strings.ReplaceAll(s, "\n", "\\n")
	logToInclude = strings.TrimSuffix(logToInclude, "\\n")
	logToInclude = ClearUnprintableChars(logToInclude, false)

	origLogLen := len(logToInclude)
	if origLogLen > maxLogLen {
		logToInclude = fmt.Sprintf("[%v chars trimmed]", origLogLen-maxLogLen) + logToInclude[len(logToInclude)-maxLogLen:]
	}

	return fmt.Sprintf("(%v: '%v')", logLabel, logToInclude)
}
