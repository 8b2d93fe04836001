// Package config provides the process-wide configuration for a11yscan.
// It covers the browser engine, the output root for exported reports,
// navigation bounds, logging, optional scan history and the source of the
// axe-core script. Values come from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
package config
