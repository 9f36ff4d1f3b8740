// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"fmt"
	"strings"
)

// Event names pushed to the admin pages.
const (
	EventStats = "stats"
)

// Heartbeat is an SSE comment that keeps idle connections open through
// proxies. Clients ignore it.
const Heartbeat = ": heartbeat\n\n"

// FormatEvent encodes data as one SSE event. Every line of data gets its
// own "data:" field so fragments with newlines survive intact.
func FormatEvent(name, data string) string {
	var sb strings.Builder
	if name != "" {
		fmt.Fprintf(&sb, "event: %s\n", name)
	}
	for line := range strings.SplitSeq(data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", strings.TrimSuffix(line, "\r"))
	}
	sb.WriteString("\n")
	return sb.String()
}
