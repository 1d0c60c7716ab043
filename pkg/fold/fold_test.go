// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fold_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/rankboard/pkg/fold"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ascii_upper", "Stardust1971", "stardust1971"},
		{"surrounding_space", "  Aquatias ", "aquatias"},
		{"full_width", "ＡＢＣ", "abc"},
		{"sharp_s", "STRASSE", "strasse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fold.Key(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, fold.Equal("Mullsy", "mULLSY"))
	assert.False(t, fold.Equal("Mullsy", "Mulsy"))
}
