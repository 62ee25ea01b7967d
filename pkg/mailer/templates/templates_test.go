package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_UserRegistered(t *testing.T) {
	data := NewUserRegisteredData("Library", "ops@library.test", "u-1", "alice", "Alice A", "", WithIP("10.0.0.1"))

	subject, text, html, err := Render(UserRegistered, data)
	require.NoError(t, err)
	assert.Equal(t, "[Library] New member: alice", subject)
	assert.Contains(t, text, "Country:   -")
	assert.Contains(t, text, "From IP:   10.0.0.1")
	assert.Contains(t, html, "<strong>alice</strong>")
}

func TestRender_OrphanedAssetEscapesHTML(t *testing.T) {
	data := NewOrphanedAssetData("", "ops@library.test", "u-1", "library/abc.png", "", WithReason("<db down>"))

	subject, text, html, err := Render(OrphanedAsset, data)
	require.NoError(t, err)
	assert.Equal(t, "[Library] Orphaned profile image library/abc.png", subject)
	assert.Contains(t, text, "Asset ID:  (no record)")
	assert.Contains(t, text, "Reason:    <db down>")
	assert.Contains(t, html, "&lt;db down&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	assert.Error(t, err)
}
