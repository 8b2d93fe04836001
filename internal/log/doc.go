// Package log builds the slog loggers used by the server and CLI.
//
// Every logger wraps its handler in a SecureHandler, which redacts
// attributes before they are written:
//   - keys naming secrets (token, cookie, password, ...) are masked
//   - bearer, basic, JWT and AWS credential values are masked whatever their key
//   - scan target URLs lose their userinfo and token-like query values
//   - strings longer than DefaultMaxValueLen, typically page HTML, are clipped
//
// stdout carries the tool protocol, so loggers write to stderr and,
// optionally, an append-only log file.
//
//	logger, err := log.New(os.Stderr, cfg.LogFile, log.Level(cfg.Verbose, slog.LevelInfo))
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("scan started", "url", "https://preview.example.com/?token=abc")
//	// url=https://preview.example.com/?token=REDACTED
package log
