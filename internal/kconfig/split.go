package kconfig

import "bytes"

// SplitLines splits data after every '\n', keeping terminators attached so
// that joining the result reproduces data exactly. A final line without a
// terminator is returned as-is; empty input yields no lines.
func SplitLines(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines
}
