// Package browser manages browser processes and the isolated execution
// contexts that scans run in.
//
// The Launcher, Browser and Page interfaces describe what a scan needs from a
// browser. ChromeLauncher implements them with chromedp. WithBrowser and
// WithPage acquire a resource, hand it to a function and release it on every
// exit path, including panics.
//
// Each Page is backed by its own browser context, so cookies, storage and
// history never leak between targets that share one browser process.
package browser
