package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fudanglp/docker-layers/internal/inspector"
	"github.com/fudanglp/docker-layers/internal/probe"
)

// ProbeResult renders detected runtimes as an indented listing.
func ProbeResult(r probe.Result) string {
	if len(r.Runtimes) == 0 {
		return "No container runtimes detected.\n"
	}

	var sb strings.Builder
	sb.WriteString("Detected container runtimes:\n\n")
	for i, rt := range r.Runtimes {
		name := Bold(rt.Kind.String())
		if r.IsDefault(i) {
			name += " " + Accent("(default)")
		}
		sb.WriteString("  " + name + "\n")
		sb.WriteString(KeyValues("    ",
			KV("Binary", rt.BinaryPath),
			KV("Storage root", rt.StorageRoot),
			KV("Storage driver", rt.StorageDriver.String()),
			KV("Daemon running", YesNo(rt.IsRunning, "no")),
			KV("Storage readable", YesNo(rt.CanRead, "no (run as root)")),
		))
		sb.WriteString("\n")
	}
	return sb.String()
}

// digestWidth keeps "sha256:" and the first 12 hex digits.
const digestWidth = 19

// Image renders an image summary and its layer table.
func Image(info *inspector.ImageInfo) string {
	var sb strings.Builder

	title := Bold(info.Name)
	if info.Tag != "" {
		title += Muted(":" + info.Tag)
	}
	sb.WriteString(title + "\n")

	var meta []string
	if info.Architecture != "" {
		meta = append(meta, info.Architecture)
	}
	meta = append(meta, Bytes(info.TotalSize), fmt.Sprintf("%d layers", len(info.Layers)))
	sb.WriteString(Muted(strings.Join(meta, "  ")) + "\n\n")

	rows := make([][]string, 0, len(info.Layers))
	for i, l := range info.Layers {
		digest := l.Digest
		if len(digest) > digestWidth {
			digest = digest[:digestWidth]
		}
		files := "-"
		if len(l.Files) > 0 {
			files = strconv.Itoa(len(l.Files))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			digest,
			Bytes(l.Size),
			files,
			truncate(l.CreatedBy, 60),
		})
	}
	sb.WriteString(Table([]string{"#", "Digest", "Size", "Files", "Created by"}, rows))
	sb.WriteString("\n")
	return sb.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
