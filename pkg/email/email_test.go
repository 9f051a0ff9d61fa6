package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"gareth.price@example.org", "Gareth Price"},
		{"carys_morgan@example.org", "Carys Morgan"},
		{"rhys-o-jones@example.org", "Rhys O Jones"},
		{"dafydd+grants@example.org", "Dafydd Grants"},
		{"single@example.org", "Single"},
		{"no-at-sign", "No At Sign"},
		{"...@example.org", "User"},
		{"", "User"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDisplayName(tt.address))
		})
	}
}
