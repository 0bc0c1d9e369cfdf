package orderutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStreet(t *testing.T) {
	tests := []struct {
		street, additional string
		wantName, wantNum  string
	}{
		{"Kraanspoor 39C", "", "Kraanspoor", "39C"},
		{"Kraanspoor 39", "C", "Kraanspoor", "39 C"},
		{"Kraanspoor  39 ", "", "Kraanspoor", "39"},
		{"1e Constantijn Huygensstraat 12", "", "1e Constantijn Huygensstraat", "12"},
		{"Hauptstraße 5-7", "", "Hauptstraße", "5-7"},
		{"221B Baker Street", "", "Baker Street", "221B"},
		{"Damrak", "", "Damrak", ""},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.street, func(t *testing.T) {
			name, num := ParseStreet(tt.street, tt.additional)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantNum, num)
		})
	}
}
