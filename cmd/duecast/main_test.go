package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"duecast": main,
	})
}

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "duecast" {
		t.Fatalf("expected root command name duecast, got %q", rootCmd.Use)
	}
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			home := filepath.Join(env.WorkDir, "home")
			if err := os.MkdirAll(home, 0o755); err != nil {
				return err
			}
			env.Setenv("HOME", home)
			env.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
			env.Setenv("DUECAST_DATA_DIR", filepath.Join(env.WorkDir, "data"))
			env.Setenv("DUECAST_DESKTOP_NOTIFICATIONS", "0")
			return nil
		},
	})
}
