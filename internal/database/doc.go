// Package database provides the optional SQLite scan history.
//
// HistoryDB stores one row per scanned target (successful or failed) and one
// row per exported report. Nothing is written unless history is enabled in
// the configuration; exported report files remain the primary output.
//
// The database uses modernc.org/sqlite, a CGO-free driver, so the binary
// cross-compiles without a C toolchain.
package database
