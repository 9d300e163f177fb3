package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		label string
		want  Classification
		ok    bool
	}{
		{"skipped", ClassificationSkipped, true},
		{"Skip", ClassificationSkipped, true},
		{"answered (high quality)", ClassificationHighQuality, true},
		{"Answered High Quality", ClassificationHighQuality, true},
		{"high-quality", ClassificationHighQuality, true},
		{"answered (low quality)", ClassificationLowQuality, true},
		{"low_quality", ClassificationLowQuality, true},
		{"OTHER", ClassificationOther, true},
		{" other ", ClassificationOther, true},
		{"answered", "", false},
		{"", "", false},
		{"excellent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseClassification(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
