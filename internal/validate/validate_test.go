package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workstack.dev/workstack/internal/validate"
	"workstack.dev/workstack/internal/wserrors"
)

func TestValidateWorktreeName_Rejects(t *testing.T) {
	cases := []string{"", "root", "main", "master", "..", "a/b", `a\b`, "ROOT"}
	for _, name := range cases {
		err := validate.ValidateWorktreeName(name)
		require.Errorf(t, err, "expected %q to be rejected", name)
		cat, ok := wserrors.CategoryOf(err)
		require.True(t, ok)
		assert.Equal(t, wserrors.Validation, cat)
	}
}

func TestValidateWorktreeName_Accepts(t *testing.T) {
	for _, name := range []string{"feature-x", "my_branch", "123"} {
		assert.NoError(t, validate.ValidateWorktreeName(name))
	}
}

func TestSanitizeWorktreeName_Idempotent(t *testing.T) {
	inputs := []string{"Feature X!!", "  leading--trailing  ", "already-sane", "UPPER_CASE/Thing"}
	for _, in := range inputs {
		once := validate.SanitizeWorktreeName(in)
		twice := validate.SanitizeWorktreeName(once)
		assert.Equal(t, once, twice, "sanitize not idempotent for %q", in)
	}
}

func TestSanitizeWorktreeName_Collapses(t *testing.T) {
	assert.Equal(t, "feature-x", validate.SanitizeWorktreeName("Feature   X!!"))
	assert.Equal(t, "leading-trailing", validate.SanitizeWorktreeName("--leading-trailing--"))
}

func TestSanitizeBranchName_Idempotent(t *testing.T) {
	inputs := []string{"feat/foo bar", "weird..name", "trailing/", "trailing."}
	for _, in := range inputs {
		once := validate.SanitizeBranchName(in)
		twice := validate.SanitizeBranchName(once)
		assert.Equal(t, once, twice, "sanitize not idempotent for %q", in)
	}
}

func TestSanitizeBranchName_PreservesSlashesAndDots(t *testing.T) {
	assert.Equal(t, "feat/foo-bar", validate.SanitizeBranchName("feat/foo bar"))
	assert.Equal(t, "release/1.2.3", validate.SanitizeBranchName("release/1.2.3"))
}

func TestSanitizeBranchName_TrimsTrailingSlashOrDot(t *testing.T) {
	assert.Equal(t, "feat/foo", validate.SanitizeBranchName("feat/foo/"))
	assert.Equal(t, "feat/foo", validate.SanitizeBranchName("feat/foo."))
}
