// Package report renders an inspected image as a self-contained HTML page
// and serves it on a loopback port.
//
// The page reads its data from a JSON script tag filled in by Build, so
// the same file works served or saved to disk.
package report
