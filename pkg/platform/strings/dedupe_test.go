package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grantgate/pkg/domain"
)

func TestDedupeAndTrim(t *testing.T) {
	t.Run("removes duplicates and empties, preserves order", func(t *testing.T) {
		got := DedupeAndTrim([]string{"  foo ", "bar", "foo", "", "  "})
		assert.Equal(t, []string{"foo", "bar"}, got)
	})

	t.Run("works over derived string types", func(t *testing.T) {
		got := DedupeAndTrim([]domain.UserID{"committee-1", " committee-1 ", "committee-2"})
		assert.Equal(t, []domain.UserID{"committee-1", "committee-2"}, got)
	})

	t.Run("nil and empty input pass through", func(t *testing.T) {
		assert.Nil(t, DedupeAndTrim[string](nil))
		assert.Empty(t, DedupeAndTrim([]string{}))
	})
}
