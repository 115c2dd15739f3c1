// Package gonetworkmanager wraps the nmcli command-line tool behind typed
// operations. All parsing of nmcli's textual reports lives here.
package gonetworkmanager

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// --- nmcli field names ---
const (
	NmcliFieldGeneralDevice   = "GENERAL.DEVICE"
	NmcliFieldGeneralType     = "GENERAL.TYPE"
	NmcliFieldIP4Address1     = "IP4.ADDRESS[1]"
	NmcliFieldConnectionName  = "NAME"
	NmcliFieldConnectionType  = "TYPE"
	NmcliFieldWifiSSID        = "SSID"
	NmcliFieldWifiSecurity    = "SECURITY"
	NmcliFieldWifiSignal      = "SIGNAL"
	NmcliFieldDeviceStatusDev = "DEVICE"
	NmcliFieldDeviceState     = "STATE"
	NmcliFieldDeviceConn      = "CONNECTION"

	DeviceTypeWifi         = "wifi"
	ConnectionTypeWireless = "802-11-wireless"

	hiddenSSID = "--"

	// waitDelay bounds how long Run waits for output pipes after nmcli is killed.
	waitDelay = 2 * time.Second
)

// Runner executes nmcli with the given arguments and returns its stdout.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the real nmcli binary.
type ExecRunner struct {
	// Path is the nmcli binary. Default: "nmcli" (searches PATH)
	Path string
	// Timeout bounds each call. Zero means no bound.
	Timeout time.Duration

	logger *zap.Logger
}

// NewExecRunner creates a runner for the nmcli binary at path.
func NewExecRunner(path string, timeout time.Duration, logger *zap.Logger) *ExecRunner {
	if path == "" {
		path = "nmcli"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{Path: path, Timeout: timeout, logger: logger}
}

// Run executes nmcli. Failures to start the binary come back as
// *UnavailableError, non-zero exits and timeouts as *CommandError.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.WaitDelay = waitDelay
	// Parsers expect untranslated headers and keywords.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("executing nmcli", zap.String("path", r.Path), zap.Strings("args", redactArgs(args)))
	start := time.Now()
	err := cmd.Run()
	stdoutStr := strings.TrimSpace(stdout.String())
	stderrStr := strings.TrimSpace(stderr.String())

	r.logger.Debug("nmcli finished",
		zap.Strings("args", redactArgs(args)),
		zap.Duration("duration", time.Since(start)),
		zap.Int("stdout_size", len(stdoutStr)),
		zap.String("stderr", stderrStr),
	)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdoutStr, &CommandError{Args: args, ExitCode: -1, Stderr: stderrStr, Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdoutStr, &CommandError{Args: args, ExitCode: exitErr.ExitCode(), Stderr: stderrStr, Err: err}
		}
		return stdoutStr, &UnavailableError{Binary: r.Path, Err: err}
	}
	return stdoutStr, nil
}

// redactArgs hides the value following a "password" argument.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "password" {
			out[i+1] = "***"
			i++
		}
	}
	return out
}

// --- Parsers ---

// parseNmcliMultilineOutput splits "KEY:value" output into records. A new
// record starts whenever the first key of the current record repeats.
func parseNmcliMultilineOutput(output string) ([]map[string]string, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return []map[string]string{}, nil
	}
	var records []map[string]string
	var currentRecord map[string]string
	var firstKeyOfRecord string
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}
		parts := strings.SplitN(trimmedLine, ":", 2)
		if len(parts) != 2 {
			return nil, &ParseError{Command: "multiline", Line: trimmedLine, Err: errors.New("missing ':' separator")}
		}
		key := strings.TrimSpace(parts[0])
		// Only leading whitespace is trimmed so SSIDs keep trailing spaces.
		value := strings.TrimLeft(parts[1], " \t")
		if key == "" {
			return nil, &ParseError{Command: "multiline", Line: trimmedLine, Err: errors.New("empty key")}
		}
		if currentRecord == nil {
			currentRecord = make(map[string]string)
			firstKeyOfRecord = key
		} else if key == firstKeyOfRecord && len(currentRecord) > 0 {
			records = append(records, currentRecord)
			currentRecord = make(map[string]string)
		}
		currentRecord[key] = value
	}
	if len(currentRecord) > 0 {
		records = append(records, currentRecord)
	}
	return records, nil
}

// splitTerseLine splits one line of `nmcli -t` output on unescaped colons.
// nmcli escapes ':' and '\' inside values with a backslash.
func splitTerseLine(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}

// splitAtWidth cuts s after w display cells. nmcli pads table columns by
// display width, so byte offsets drift on wide or multibyte SSIDs.
func splitAtWidth(s string, w int) (string, string) {
	width := 0
	for i, r := range s {
		if width >= w {
			return s[:i], s[i:]
		}
		width += runewidth.RuneWidth(r)
	}
	return s, ""
}

// isOpenSecurity reports whether a SECURITY column means no security.
func isOpenSecurity(security string) bool {
	switch strings.ToLower(strings.TrimSpace(security)) {
	case "", "--", "none":
		return true
	}
	return false
}

// headerColumns returns the display offset where each header token starts.
func headerColumns(header string) []int {
	var cols []int
	width := 0
	inToken := false
	for _, r := range header {
		space := r == ' ' || r == '\t'
		if !space && !inToken {
			cols = append(cols, width)
		}
		inToken = !space
		width += runewidth.RuneWidth(r)
	}
	return cols
}

// parseWifiTable parses `nmcli -f SSID,SECURITY,SIGNAL device wifi list`.
// Column boundaries come from the header row; the field order is fixed by
// -f, so translated header names still parse. Hidden rows (empty or "--"
// SSID) are dropped. Any other malformed row fails the whole parse.
func parseWifiTable(output string) ([]Network, error) {
	output = strings.TrimRight(output, "\n")
	if strings.TrimSpace(output) == "" {
		return []Network{}, nil
	}
	lines := strings.Split(output, "\n")
	header := lines[0]
	cols := headerColumns(header)
	if len(cols) != 3 || cols[0] != 0 {
		return nil, &ParseError{Command: "device wifi list", Line: header, Err: errors.New("unexpected header")}
	}
	secCol, sigCol := cols[1], cols[2]

	networks := []Network{}
	for _, row := range lines[1:] {
		if strings.TrimSpace(row) == "" {
			continue
		}
		nameCol, rest := splitAtWidth(row, secCol)
		secField, sigField := splitAtWidth(rest, sigCol-secCol)

		name := strings.TrimSpace(nameCol)
		if name == "" || name == hiddenSSID {
			continue
		}

		signal, err := strconv.Atoi(strings.TrimSpace(sigField))
		if err != nil {
			return nil, &ParseError{Command: "device wifi list", Line: row, Err: fmt.Errorf("bad signal: %w", err)}
		}
		if signal < 0 || signal > 100 {
			return nil, &ParseError{Command: "device wifi list", Line: row, Err: fmt.Errorf("signal %d out of range", signal)}
		}

		networks = append(networks, Network{
			Name:      name,
			Protected: !isOpenSecurity(secField),
			Signal:    signal,
		})
	}
	return networks, nil
}

var deviceStateMap = map[int]string{
	0: "unknown", 10: "unmanaged", 20: "unavailable", 30: "disconnected", 40: "prepare", 50: "config",
	60: "need-auth", 70: "ip-config", 80: "ip-check", 90: "secondaries", 100: "activated",
	110: "deactivating", 120: "failed",
}

// parseDeviceState accepts "100 (connected)", "100" or a plain word.
func parseDeviceState(stateStr string) string {
	stateStr = strings.TrimSpace(stateStr)
	if stateStr == "" {
		return "unknown"
	}
	if open := strings.Index(stateStr, "("); open > 0 && strings.HasSuffix(stateStr, ")") {
		if _, err := strconv.Atoi(strings.TrimSpace(stateStr[:open])); err == nil {
			return strings.TrimSpace(strings.TrimSuffix(stateStr[open+1:], ")"))
		}
	}
	if code, err := strconv.Atoi(stateStr); err == nil {
		if desc, ok := deviceStateMap[code]; ok {
			return desc
		}
		return fmt.Sprintf("Unknown code (%d)", code)
	}
	return stateStr
}

// parseDeviceStatus parses `nmcli -t -f DEVICE,TYPE,STATE,CONNECTION device`.
func parseDeviceStatus(output string) ([]DeviceStatus, error) {
	var statuses []DeviceStatus
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := splitTerseLine(line)
		if len(parts) < 3 {
			return nil, &ParseError{Command: "device", Line: line, Err: errors.New("too few fields")}
		}
		status := DeviceStatus{
			Device: strings.TrimSpace(parts[0]),
			Type:   strings.TrimSpace(parts[1]),
			State:  parseDeviceState(parts[2]),
		}
		if len(parts) > 3 {
			if conn := strings.TrimSpace(parts[3]); conn != "" && conn != "--" {
				status.Connection = conn
			}
		}
		statuses = append(statuses, status)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Command: "device", Err: err}
	}
	return statuses, nil
}
