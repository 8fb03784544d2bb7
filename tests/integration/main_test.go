package integration

import (
	"os"
	"testing"
)

// run keeps the shared postgres container alive for the whole package
func run(m *testing.M) int {
	defer CleanupSharedContainer()
	return m.Run()
}

func TestMain(m *testing.M) {
	os.Exit(run(m))
}
