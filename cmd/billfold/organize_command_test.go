package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/billfold/billfold/internal/testsupport"
)

func TestOrganizeCommandCopiesAndResolvesConflicts(t *testing.T) {
	env := setupCLITestEnv(t)

	srcDir := filepath.Join(env.baseDir, "downloads")
	first := filepath.Join(srcDir, "alpha.pdf")
	second := filepath.Join(srcDir, "beta.pdf")
	testsupport.WritePDF(t, first, "Alpha invoice")
	testsupport.WritePDF(t, second, "Beta invoice")
	dest := filepath.Join(env.baseDir, "filed")

	out, _, err := runCLI(t, []string{"organize", "--dest", dest, first, second}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Organizing 2 files into "+dest)
	requireContains(t, out, "Copied "+first)
	requireContains(t, out, "Done: 2 copied, 0 skipped, 0 failed")
	for _, name := range []string{"alpha.pdf", "beta.pdf"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Fatalf("expected %s in destination: %v", name, err)
		}
	}

	out, _, err = runCLI(t, []string{"organize", "--dest", dest, "--mode", "skip", first}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("organize skip: %v", err)
	}
	requireContains(t, out, "Skipped "+first+" (destination exists)")
	requireContains(t, out, "Done: 0 copied, 1 skipped, 0 failed")

	out, _, err = runCLI(t, []string{"organize", "--dest", dest, "--mode", "auto-rename", first}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("organize auto-rename: %v", err)
	}
	requireContains(t, out, "Done: 1 copied, 0 skipped, 0 failed")
	if _, err := os.Stat(filepath.Join(dest, "alpha_1.pdf")); err != nil {
		t.Fatalf("expected renamed copy: %v", err)
	}
}

func TestOrganizeCommandDefaultsToLibrary(t *testing.T) {
	env := setupCLITestEnv(t)

	source := filepath.Join(env.baseDir, "downloads", "gamma.pdf")
	testsupport.WritePDF(t, source, "Gamma invoice")

	out, _, err := runCLI(t, []string{"organize", source}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Done: 1 copied, 0 skipped, 0 failed")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.LibraryDir, "gamma.pdf")); err != nil {
		t.Fatalf("expected copy in library dir: %v", err)
	}
}

func TestOrganizeCommandSkipsMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)

	missing := filepath.Join(env.baseDir, "downloads", "ghost.pdf")
	dest := filepath.Join(env.baseDir, "filed")

	out, _, err := runCLI(t, []string{"organize", "--dest", dest, missing}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("organize missing source: %v", err)
	}
	requireContains(t, out, "Skipped "+missing+" (source does not exist)")
	requireContains(t, out, "Done: 0 copied, 1 skipped, 0 failed")
}
