package ui

import (
	"os"
	"testing"

	"github.com/vanderheijden86/sheetview/pkg/debug"
)

func TestMain(m *testing.M) {
	// Keep reload and watch logging out of test output.
	debug.SetEnabled(false)

	os.Exit(m.Run())
}
