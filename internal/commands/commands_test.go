package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitter-dev/splitter/internal/commands"
)

type result struct {
	stdout string
	stderr string
}

// run executes the CLI in-process against the project in dir.
func run(t *testing.T, dir string, args ...string) (result, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := commands.NewRootCommand()
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "splitter.yaml")}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String()}, err
}

func mustRun(t *testing.T, dir string, args ...string) result {
	t.Helper()
	res, err := run(t, dir, args...)
	require.NoError(t, err, "splitter %s\nstderr: %s", strings.Join(args, " "), res.stderr)
	return res
}

func initProject(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, append([]string{"init", dir}, extra...)...)
	return dir
}

// lineFields returns the whitespace-separated fields of every output line.
func lineFields(out string) [][]string {
	var lines [][]string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			lines = append(lines, f)
		}
	}
	return lines
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	res := mustRun(t, dir, "init", dir)
	assert.Contains(t, res.stdout, "Initialized splitter project")
	assert.Contains(t, res.stdout, "(file storage)")

	info, err := os.Stat(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	cfg, err := os.ReadFile(filepath.Join(dir, "splitter.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "backend: file")
	assert.Contains(t, string(cfg), "general_tag: General")

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{"data/", ".env"} {
		assert.Contains(t, string(gitignore), pattern)
	}
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := initProject(t)
	_, err := run(t, dir, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInit_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "init", dir, "--backend", "postgres")
	require.Error(t, err)
}

func TestMissingProject(t *testing.T) {
	_, err := run(t, t.TempDir(), "user", "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "splitter init")
}

func TestUsers(t *testing.T) {
	dir := initProject(t)
	res := mustRun(t, dir, "user", "add", "Anna", "--tag", "Vegan", "--tag", "Alcohol")
	assert.Equal(t, "Added Anna [Vegan, Alcohol]\n", res.stdout)
	mustRun(t, dir, "user", "add", "Ben")

	_, err := run(t, dir, "user", "add", "Ben")
	require.Error(t, err)
	_, err = run(t, dir, "user", "add", "Cleo", "--tag", "General")
	require.Error(t, err, "the general tag is not usable on users")

	mustRun(t, dir, "user", "rename", "Ben", "Benny")
	mustRun(t, dir, "user", "tag", "Benny", "--tag", "Meat")
	res = mustRun(t, dir, "user", "ls")
	assert.Equal(t, [][]string{
		{"NAME", "TAGS"},
		{"Anna", "Vegan,", "Alcohol"},
		{"Benny", "Meat"},
	}, lineFields(res.stdout))

	mustRun(t, dir, "user", "rm", "Anna")
	res = mustRun(t, dir, "user", "ls")
	assert.NotContains(t, res.stdout, "Anna")
}

func TestTags(t *testing.T) {
	dir := initProject(t)
	res := mustRun(t, dir, "tags")
	assert.Contains(t, res.stdout, "General (everyone)")
	assert.Contains(t, res.stdout, "Vegan")
}

func TestSettlementFlow(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A", "--tag", "Vegan")
	mustRun(t, dir, "user", "add", "B")
	mustRun(t, dir, "expense", "add-event", "--name", "Dinner", "--price", "40", "--with", "A,B")
	mustRun(t, dir, "expense", "add-pooled", "--name", "Shop", "--item", "Tofu:6:Vegan")
	res := mustRun(t, dir, "pay", "B", "46")
	assert.Contains(t, res.stdout, "Recorded 46.00 paid by B")

	res = mustRun(t, dir, "costs")
	lines := lineFields(res.stdout)
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"A", "26.00", "0.00", "-26.00"}, lines[1])
	assert.Equal(t, []string{"B", "20.00", "46.00", "26.00"}, lines[2])
	assert.Equal(t, []string{"Total", "46.00", "46.00"}, lines[3])

	res = mustRun(t, dir, "settle")
	assert.Equal(t, [][]string{{"A", "pays", "B", "26.00"}}, lineFields(res.stdout))

	res = mustRun(t, dir, "breakdown", "A")
	assert.Contains(t, res.stdout, "A owes 26.00")
	assert.Contains(t, res.stdout, "Events (1)")
	assert.Contains(t, res.stdout, "Pooled (1)")
	assert.Contains(t, res.stdout, "Tofu")

	res = mustRun(t, dir, "breakdown", "B")
	assert.NotContains(t, res.stdout, "Tofu")

	_, err := run(t, dir, "breakdown", "Nobody")
	require.Error(t, err)
}

func TestUnassignedCostsAreReported(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A")
	mustRun(t, dir, "expense", "add-pooled", "--name", "Shop", "--item", "Steak:10:Meat", "--item", "Bread:4:General")

	res := mustRun(t, dir, "costs")
	assert.Contains(t, res.stdout, "10.00 of 14.00 in expenses is not assigned to anyone.")

	res = mustRun(t, dir, "expense", "ls")
	assert.Contains(t, res.stdout, "!")
}

func TestCostsThreeWaySplitIsFullyAssigned(t *testing.T) {
	dir := initProject(t)
	for _, name := range []string{"A", "B", "C"} {
		mustRun(t, dir, "user", "add", name)
	}
	mustRun(t, dir, "expense", "add-event", "--name", "Boat", "--price", "100", "--with", "A,B,C")

	res := mustRun(t, dir, "costs")
	assert.NotContains(t, res.stdout, "not assigned")
	assert.Equal(t, []string{"A", "33.33", "0.00", "-33.33"}, lineFields(res.stdout)[1])
}

func TestExpenseWarningsAndStrict(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A")

	res, err := run(t, dir, "expense", "add-event", "--name", "Boat", "--price", "30", "--with", "A,Zed", "--strict")
	require.Error(t, err)
	assert.Contains(t, res.stderr, "Zed is not on the roster")
	assert.Contains(t, mustRun(t, dir, "expense", "ls").stdout, "No expenses.")

	res = mustRun(t, dir, "expense", "add-event", "--name", "Boat", "--price", "30", "--with", "A,Zed")
	assert.Contains(t, res.stdout, "Added event")
	assert.Contains(t, res.stderr, "warning:")

	_, err = run(t, dir, "expense", "add-pooled", "--name", "Bad", "--item", "Thing:-1:General")
	require.Error(t, err)
}

func TestExpenseShowUpdateRemove(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A")
	mustRun(t, dir, "user", "add", "B")
	res := mustRun(t, dir, "expense", "add-stay", "--name", "Cabin", "--per-night", "10",
		"--stay", "A:3", "--stay", "B:1", "--extra", "Cleaning:20")
	fields := strings.Fields(res.stdout)
	require.GreaterOrEqual(t, len(fields), 3)
	ref := fields[2]

	res = mustRun(t, dir, "expense", "show", ref)
	assert.Contains(t, res.stdout, "Cabin (accommodation)")
	assert.Contains(t, res.stdout, "Total: 60.00")
	assert.Contains(t, res.stdout, "A 30.00")
	assert.Contains(t, res.stdout, "B 10.00")

	res = mustRun(t, dir, "expense", "add-stay", "--id", ref, "--name", "Cabin", "--per-night", "10", "--stay", "A:1")
	assert.Contains(t, res.stdout, "Updated accommodation")
	res = mustRun(t, dir, "costs")
	assert.Equal(t, []string{"A", "10.00", "0.00", "-10.00"}, lineFields(res.stdout)[1])

	_, err := run(t, dir, "expense", "add-event", "--id", ref, "--name", "Cabin")
	require.Error(t, err, "kind must match")

	mustRun(t, dir, "expense", "rm", ref)
	_, err = run(t, dir, "expense", "show", ref)
	require.Error(t, err)
}

func TestAddPooledFromCSV(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A", "--tag", "Alcohol")
	csvPath := filepath.Join(dir, "receipt.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name;price;tag\nBeer;4,50;Alcohol\nChips;2,00;General\n"), 0o644))

	res := mustRun(t, dir, "expense", "add-pooled", "--name", "Kiosk", "--csv", csvPath, "--format", "receipt-eu")
	assert.Contains(t, res.stdout, "6.50")

	_, err := run(t, dir, "expense", "add-pooled", "--name", "Kiosk", "--csv", csvPath, "--format", "nope")
	require.Error(t, err)
}

func TestPayments(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A")
	_, err := run(t, dir, "pay", "Z", "10")
	require.Error(t, err)
	_, err = run(t, dir, "pay", "A", "0")
	require.Error(t, err)

	res := mustRun(t, dir, "pay", "A", "12,50", "--note", "fuel")
	fields := strings.Fields(res.stdout)
	ref := strings.Trim(fields[len(fields)-1], "()")

	res = mustRun(t, dir, "payments")
	assert.Contains(t, res.stdout, "12.50")
	assert.Contains(t, res.stdout, "fuel")

	mustRun(t, dir, "payments", "rm", ref)
	assert.Contains(t, mustRun(t, dir, "payments").stdout, "No payments.")
}

func TestExportImport(t *testing.T) {
	dir := initProject(t)
	mustRun(t, dir, "user", "add", "A")
	mustRun(t, dir, "expense", "add-event", "--name", "Museum", "--price", "12", "--with", "A")
	file := filepath.Join(dir, "backup.json")
	mustRun(t, dir, "export", file)

	res := mustRun(t, dir, "export")
	assert.Contains(t, res.stdout, `"expenses"`)
	assert.Contains(t, res.stdout, `"timestamp"`)

	other := initProject(t)
	res = mustRun(t, other, "import", file)
	assert.Equal(t, "Imported 1 users, 1 expenses, 0 payments\n", res.stdout)
	assert.Contains(t, mustRun(t, other, "expense", "ls").stdout, "Museum")

	require.NoError(t, os.WriteFile(file, []byte("not json"), 0o644))
	_, err := run(t, other, "import", file)
	require.Error(t, err)
	assert.Contains(t, mustRun(t, other, "user", "ls").stdout, "A")
}

func TestSQLiteBackend(t *testing.T) {
	dir := initProject(t, "--backend", "sqlite")
	mustRun(t, dir, "user", "add", "A")
	mustRun(t, dir, "user", "add", "B")
	mustRun(t, dir, "expense", "add-event", "--name", "Taxi", "--price", "9", "--with", "A,B")

	_, err := os.Stat(filepath.Join(dir, "data", "splitter.db"))
	require.NoError(t, err)
	res := mustRun(t, dir, "costs")
	assert.Equal(t, []string{"A", "4.50", "0.00", "-4.50"}, lineFields(res.stdout)[1])
}

func TestEnvOverridesBackend(t *testing.T) {
	dir := initProject(t)
	t.Setenv("SPLITTER_STORAGE_BACKEND", "sqlite")
	t.Setenv("SPLITTER_STORAGE_PATH", filepath.Join(dir, "env.db"))
	mustRun(t, dir, "user", "add", "A")

	_, err := os.Stat(filepath.Join(dir, "env.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data", "users.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
