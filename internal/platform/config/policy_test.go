package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantgate/internal/application/lifecycle"
	"grantgate/internal/policy"
	"grantgate/pkg/domain"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPolicy_Defaults(t *testing.T) {
	t.Run("empty path returns the compiled-in policy", func(t *testing.T) {
		p, err := LoadPolicy("")
		require.NoError(t, err)
		assert.Len(t, p.Areas, 3)
		assert.Equal(t, policy.DefaultOrdering(), p.Ordering)
		assert.Equal(t, lifecycle.DefaultRules(), p.Transitions)
	})

	t.Run("omitted sections keep their defaults", func(t *testing.T) {
		path := writePolicy(t, "areas:\n  - north\n  - south\n")
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.Area{"north", "south"}, p.Areas)
		assert.Equal(t, policy.DefaultOrdering(), p.Ordering)
		assert.Equal(t, lifecycle.DefaultRules(), p.Transitions)
	})
}

func TestLoadPolicy_Areas(t *testing.T) {
	t.Run("areas are deduplicated and trimmed", func(t *testing.T) {
		path := writePolicy(t, "areas:\n  - ' north '\n  - north\n  - south\n")
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.Area{"north", "south"}, p.Areas)
	})

	t.Run("all-blank areas section is an error", func(t *testing.T) {
		path := writePolicy(t, "areas:\n  - ' '\n  - ''\n")
		_, err := LoadPolicy(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "areas")
	})

	t.Run("area set answers membership", func(t *testing.T) {
		set := Policy{Areas: []domain.Area{"north"}}.AreaSet()
		assert.True(t, set.Contains("north"))
		assert.False(t, set.Contains("south"))
	})
}

func TestLoadPolicy_Rules(t *testing.T) {
	t.Run("rule ordering replaces the stated kinds wholesale", func(t *testing.T) {
		path := writePolicy(t, `
rules:
  score:
    - resource-exists
    - admin-read
`)
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"resource-exists", "admin-read"}, p.Ordering[domain.ResourceScore])
		// Unlisted kinds are gone; the file is the source of truth for what it states.
		assert.NotContains(t, p.Ordering, domain.ResourceUser)
	})

	t.Run("unknown resource kind is a load error", func(t *testing.T) {
		path := writePolicy(t, "rules:\n  widget:\n    - resource-exists\n")
		_, err := LoadPolicy(path)
		require.Error(t, err)
	})

	t.Run("unknown rule names surface at engine construction", func(t *testing.T) {
		path := writePolicy(t, "rules:\n  score:\n    - no-such-rule\n")
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		_, err = policy.NewEngine(p.Ordering)
		require.Error(t, err)
	})
}

func TestLoadPolicy_Transitions(t *testing.T) {
	t.Run("transition table parses", func(t *testing.T) {
		path := writePolicy(t, `
transitions:
  - from: draft
    to: submitted
    trigger: owner
`)
		p, err := LoadPolicy(path)
		require.NoError(t, err)
		require.Len(t, p.Transitions, 1)
		assert.Equal(t, lifecycle.Rule{
			From: domain.StatusDraft, To: domain.StatusSubmitted, Trigger: lifecycle.TriggerOwner,
		}, p.Transitions[0])
	})

	t.Run("unknown status is a load error", func(t *testing.T) {
		path := writePolicy(t, "transitions:\n  - from: limbo\n    to: submitted\n    trigger: owner\n")
		_, err := LoadPolicy(path)
		require.Error(t, err)
	})

	t.Run("unknown trigger is a load error", func(t *testing.T) {
		path := writePolicy(t, "transitions:\n  - from: draft\n    to: submitted\n    trigger: intern\n")
		_, err := LoadPolicy(path)
		require.Error(t, err)
	})
}

func TestLoadPolicy_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writePolicy(t, "areas: [unclosed")
		_, err := LoadPolicy(path)
		require.Error(t, err)
	})
}
