package wizard

import (
	"go/format"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// files whose const blocks and trailing comments gofmt realigns
var alignedSources = []string{
	"selection.go",
	filepath.Join("..", "handoff", "store.go"),
	filepath.Join("..", "flights", "router.go"),
}

func TestSourcesAreGofmtClean(t *testing.T) {
	for _, path := range alignedSources {
		src, err := os.ReadFile(path)
		require.NoError(t, err)
		formatted, err := format.Source(src)
		require.NoError(t, err)
		assert.Equal(t, string(formatted), string(src), "%s is not gofmt-clean", path)
	}
}
