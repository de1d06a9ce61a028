package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnore makes sure each pattern appears in .gitignore under dir,
// creating the file if needed. Patterns already present are not repeated.
// It returns the patterns it added.
func AppendIgnore(dir string, patterns ...string) ([]string, error) {
	path := filepath.Join(dir, ".gitignore")
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var add []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" && !existing[p] {
			existing[p] = true
			add = append(add, p)
		}
	}
	if len(add) == 0 {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var sb strings.Builder
	if !endsWithNewline {
		sb.WriteString("\n")
	}
	for _, p := range add {
		sb.WriteString(p + "\n")
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		return nil, err
	}
	return add, nil
}

// GeneratedIgnores lists the files kmodaudit leaves next to audited configs.
// suffix is the derived-output suffix in effect; empty means none.
func GeneratedIgnores(suffix string, history, cache string) []string {
	var out []string
	if suffix != "" {
		out = append(out, "*"+suffix)
	}
	return append(out, history, cache)
}
