// Package ui renders probe results and image layers for the terminal.
package ui
