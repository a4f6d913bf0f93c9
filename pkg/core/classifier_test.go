package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/patchlore/pkg/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    core.ChangeType
	}{
		{"Add login", core.ChangeFeature},
		{"feat(api): new endpoint", core.ChangeFeature},
		{"Implemented caching layer", core.ChangeFeature},
		{"Fix crash", core.ChangeFix},
		{"hotfix: null pointer", core.ChangeFix},
		{"Resolved issue with uploads", core.ChangeFix},
		{"Breaking: remove v1 API", core.ChangeBreaking},
		{"break: rename config keys", core.ChangeBreaking},
		{"refactor: this is a BREAKING change", core.ChangeBreaking},
		// Breaking beats fix, fix beats feature.
		{"breaking fix for the new parser", core.ChangeBreaking},
		{"fix: add missing nil check", core.ChangeFix},
		{"chore: bump deps", core.ChangeOther},
		{"Update README", core.ChangeOther},
		{"", core.ChangeOther},
		// Word boundaries: these only contain the keywords as substrings.
		{"prefix the address", core.ChangeOther},
		{"renewal of debugging docs", core.ChangeOther},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, core.Classify(tt.message))
		})
	}
}

func TestClassify_Total(t *testing.T) {
	inputs := []string{"\x00\xff", "🚀 ship it", "   ", "\n\nfix\n"}
	for _, in := range inputs {
		assert.True(t, core.Classify(in).Valid(), "input %q", in)
	}
}
