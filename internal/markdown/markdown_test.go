package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	out := ToHTML("## How it works\n\nThe model uses **gradient boosting**.\n\n- OverallQual\n- GrLivArea\n")

	assert.Contains(t, out, "How it works</h2>")
	assert.Contains(t, out, "<strong>gradient boosting</strong>")
	assert.Contains(t, out, "<li>OverallQual</li>")
}

func TestToHTMLStripsScripts(t *testing.T) {
	out := ToHTML("hello <script>alert(1)</script> [x](javascript:void)")

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hello")
}

func TestToHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", ToHTML("   "))
	assert.Equal(t, "", string(Render("")))
}
