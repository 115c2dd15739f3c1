// Package logging sets up the zap logger used across nmwifi.
//
// The TUI owns the terminal, so log output is always written to a file. When
// no level is configured (neither explicitly nor through NMWIFI_LOG_LEVEL)
// the logger is a no-op and nothing is written at all.
//
//	if err := logging.Initialize("debug", "/tmp/nmwifi-debug.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	logging.Debug("nmcli", zap.Strings("args", args))
package logging
