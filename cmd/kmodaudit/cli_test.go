package kmodaudit

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmodaudit/kmodaudit/internal/runlog"
	"github.com/kmodaudit/kmodaudit/internal/types"
)

const sampleConfig = `CONFIG_LOCALVERSION="-mp61"
CONFIG_BRIDGE=m
CONFIG_FOO_RANDOM=m
# CONFIG_TUN is not set
CONFIG_NF_TABLES=m
CONFIG_SND_HDA_INTEL=m
CONFIG_NFS_V4=m
`

const sampleAudited = `CONFIG_LOCALVERSION="-mp61"
CONFIG_BRIDGE=y
# CONFIG_FOO_RANDOM is not set
# CONFIG_TUN is not set
CONFIG_NF_TABLES=y
# CONFIG_SND_HDA_INTEL is not set
CONFIG_NFS_V4=y
`

func resetFlags() {
	flagConfigFile, flagPatterns, flagSuffix, flagFormat = "", "", "", ""
	flagNoColor, flagVerbose, flagInPlace, flagDryRun = false, false, false, false
	flagShowDisabled, flagNoHistory = false, false
	flagOutput, flagSummary = "", ""
	flagNoCache, flagCacheRoot = false, "."
	flagHistoryLimit = 20
	cfgOutput, cfgSuffix, cfgFormat, cfgPatterns, cfgExtra = ".kmodaudit.yml", "", "text", "", ""
	cfgInPlace, cfgForce, cfgIgnore = false, false, false
	clearChanged(rootCmd)
}

func clearChanged(c *cobra.Command) {
	unset := func(f *pflag.Flag) { f.Changed = false }
	c.Flags().VisitAll(unset)
	c.PersistentFlags().VisitAll(unset)
	for _, sub := range c.Commands() {
		clearChanged(sub)
	}
}

// runCLI executes the command tree in-process with a clean flag state and
// no global config.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()
	t.Cleanup(resetFlags)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCLI_RequiresExactlyOneConfig(t *testing.T) {
	for _, args := range [][]string{{}, {"a.config", "b.config"}} {
		_, err := runCLI(t, args...)
		var ue *usageError
		require.True(t, errors.As(err, &ue), "args %v: %v", args, err)
	}
}

func TestCLI_UnknownFlagIsUsageError(t *testing.T) {
	_, err := runCLI(t, "--bogus", "x.config")
	var ue *usageError
	assert.True(t, errors.As(err, &ue))
}

func TestCLI_AuditWritesSibling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	writeFile(t, path, sampleConfig)

	out, err := runCLI(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "Results for "+path)
	assert.Contains(t, out, "Kept as =y:  3")
	assert.Contains(t, out, "Disabled:    2")
	assert.Contains(t, out, "Total =m processed: 5")
	assert.Contains(t, out, "=y  BRIDGE")

	assert.Equal(t, sampleConfig, readFile(t, path))
	assert.Equal(t, sampleAudited, readFile(t, path+".audited"))

	records, err := runlog.New(dir).Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Kept)
}

func TestCLI_InPlaceJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	writeFile(t, path, sampleConfig)

	out, err := runCLI(t, path, "--in-place", "--format", "json", "--no-history")
	require.NoError(t, err)
	var reps []types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reps), out)
	require.Len(t, reps, 1)
	assert.True(t, reps[0].Written)
	assert.Equal(t, []string{"FOO_RANDOM", "SND_HDA_INTEL"}, reps[0].Disabled)

	assert.Equal(t, sampleAudited, readFile(t, path))
	assert.NoFileExists(t, path+".audited")
	assert.NoFileExists(t, filepath.Join(dir, runlog.FileName))
}

func TestCLI_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	writeFile(t, path, sampleConfig)

	out, err := runCLI(t, path, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "(dry-run) would write")
	assert.NoFileExists(t, path+".audited")
	assert.NoFileExists(t, filepath.Join(dir, runlog.FileName))
}

func TestCLI_OutputAndSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	dst := filepath.Join(dir, "out", "final.config")
	summary := filepath.Join(dir, "summary.json")
	writeFile(t, path, sampleConfig)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))

	_, err := runCLI(t, path, "-o", dst, "--summary", summary)
	require.NoError(t, err)
	assert.Equal(t, sampleAudited, readFile(t, dst))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, summary)), &got))
	assert.Equal(t, "audit", got["action"])
	assert.EqualValues(t, 3, got["kept"])
	assert.EqualValues(t, 2, got["disabled"])
}

func TestCLI_OutputOverridesConfigInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	dst := filepath.Join(dir, "final.config")
	writeFile(t, path, sampleConfig)
	writeFile(t, filepath.Join(dir, ".kmodaudit.yml"), "in_place: true\n")

	_, err := runCLI(t, path, "-o", dst)
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, readFile(t, path))
	assert.Equal(t, sampleAudited, readFile(t, dst))
}

func TestCLI_InPlaceFalseOverridesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	writeFile(t, path, sampleConfig)
	writeFile(t, filepath.Join(dir, ".kmodaudit.yml"), "in_place: true\n")

	_, err := runCLI(t, path, "--in-place=false")
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, readFile(t, path))
	assert.Equal(t, sampleAudited, readFile(t, path+".audited"))

	_, err = runCLI(t, path)
	require.NoError(t, err)
	assert.Equal(t, sampleAudited, readFile(t, path), "config in_place applies without the flag")
}

func TestCLI_BadPatternFileTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.config")
	pats := filepath.Join(dir, "patterns.yml")
	writeFile(t, path, sampleConfig)
	writeFile(t, pats, "schema: 1.0.0\npatterns:\n  - expr: \"^BRIDGE(\"\n")

	_, err := runCLI(t, path, "--patterns", pats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid allow-list")
	assert.Equal(t, sampleConfig, readFile(t, path))
	assert.NoFileExists(t, path+".audited")
}

func TestCLI_UnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.config")
	writeFile(t, path, sampleConfig)
	_, err := runCLI(t, path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
	assert.NoFileExists(t, path+".audited")
}

func TestCLI_MissingInput(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "missing.config"))
	require.Error(t, err)
	var ue *usageError
	assert.False(t, errors.As(err, &ue))
}

func TestCLI_BatchUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "x86.config"), sampleConfig)
	writeFile(t, filepath.Join(dir, "b", "arm.config"), sampleConfig)
	glob := filepath.Join(dir, "**", "*.config")

	out, err := runCLI(t, "batch", glob, "--cache-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 2 audited, 0 skipped; options: 6 kept, 4 disabled")
	assert.FileExists(t, filepath.Join(dir, "a", "x86.config.audited"))

	out, err = runCLI(t, "batch", glob, "--cache-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 0 audited, 2 skipped")

	// a removed output forces that file to be audited again
	require.NoError(t, os.Remove(filepath.Join(dir, "b", "arm.config.audited")))
	out, err = runCLI(t, "batch", glob, "--cache-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 1 audited, 1 skipped")

	out, err = runCLI(t, "batch", glob, "--cache-root", dir, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 2 audited, 0 skipped")
}

func TestCLI_BatchIgnoresOwnOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x86"), sampleConfig)
	glob := filepath.Join(dir, "*")

	out, err := runCLI(t, "batch", glob, "--cache-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 1 audited, 0 skipped")
	assert.FileExists(t, filepath.Join(dir, "x86.audited"))
	assert.FileExists(t, filepath.Join(dir, runlog.FileName))

	out, err = runCLI(t, "batch", glob, "--cache-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 0 audited, 1 skipped")
	assert.NoFileExists(t, filepath.Join(dir, "x86.audited.audited"))
	assert.NoFileExists(t, filepath.Join(dir, runlog.FileName+".audited"))

	out, err = runCLI(t, "batch", glob, "--cache-root", dir, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 1 audited, 0 skipped")
	assert.NoFileExists(t, filepath.Join(dir, "x86.audited.audited"))
}

func TestCLI_BatchNoMatches(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "batch", filepath.Join(dir, "*.config"), "--cache-root", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No config files matched")
}

func TestCLI_PatternsExplain(t *testing.T) {
	out, err := runCLI(t, "patterns", "explain", "CONFIG_BRIDGE", "FOO_RANDOM")
	require.NoError(t, err)
	assert.Contains(t, out, "CONFIG_BRIDGE=y")
	assert.Contains(t, out, "# CONFIG_FOO_RANDOM is not set")
}

func TestCLI_PatternsExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	exported := filepath.Join(dir, "patterns.yml")
	path := filepath.Join(dir, "board.config")
	writeFile(t, path, sampleConfig)

	_, err := runCLI(t, "patterns", "export", exported)
	require.NoError(t, err)

	_, err = runCLI(t, path, "--patterns", exported)
	require.NoError(t, err)
	assert.Equal(t, sampleAudited, readFile(t, path+".audited"))
}

func TestCLI_ConfigInitThenAudit(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, ".kmodaudit.yml")
	path := filepath.Join(dir, "board.config")
	writeFile(t, path, sampleConfig)

	_, err := runCLI(t, "config", "init", "--output", cfg, "--extra", "^FOO_", "--suffix", ".new")
	require.NoError(t, err)

	_, err = runCLI(t, "config", "init", "--output", cfg)
	require.Error(t, err, "existing file needs --force")

	_, err = runCLI(t, path)
	require.NoError(t, err)
	assert.NoFileExists(t, path+".audited")
	assert.Contains(t, readFile(t, path+".new"), "CONFIG_FOO_RANDOM=y\n")
}

func TestCLI_ConfigInitGitignore(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, ".kmodaudit.yml")
	out, err := runCLI(t, "config", "init", "--output", cfg, "--gitignore")
	require.NoError(t, err)
	assert.Contains(t, out, "Ignored *.audited")
	assert.Equal(t, "*.audited\n.kmodaudit_history.jsonl\n.kmodauditcache.json\n",
		readFile(t, filepath.Join(dir, ".gitignore")))
}

func TestCLI_ConfigInitRejectsBadExtra(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), ".kmodaudit.yml")
	_, err := runCLI(t, "config", "init", "--output", cfg, "--extra", "^OK$,(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra pattern 2")
	assert.NoFileExists(t, cfg)
}

func TestCLI_HistoryEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "history", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No audits recorded in")
}

func TestCLI_HelpMentionsHistoryFile(t *testing.T) {
	out, err := runCLI(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, runlog.FileName)
	assert.Contains(t, out, "--no-history")
}
