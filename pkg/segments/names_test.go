package segments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	assert.Equal(t, "台北車站(忠孝)", CleanName(" 臺北車站（忠孝） "))
	assert.Equal(t, "公館", CleanName("公館"))
}

func TestNamesMatch(t *testing.T) {
	tests := []struct {
		name  string
		stop  string
		token string
		match bool
	}{
		{"identical", "公館", "公館", true},
		{"legacy character", "臺北車站", "台北車站", true},
		{"station suffix on token", "市政府", "市政府站", true},
		{"station suffix on stop", "市政府站", "市政府", true},
		{"qualifier on stop", "捷運市政府站(忠孝)", "捷運市政府", true},
		{"fullwidth qualifier on token", "捷運市政府(忠孝)", "捷運市政府（松仁）", true},
		{"alternative", "台大醫院", "公館&台大醫院", true},
		{"no alternative matches", "景美", "公館&台大醫院", false},
		{"different names", "景美", "木柵", false},
		{"empty token", "景美", "", false},
		{"empty base does not match", "(虛擬站不停靠)", "(其他)", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.match, NamesMatch(test.stop, test.token))
		})
	}
}

func TestIsVirtualStop(t *testing.T) {
	assert.True(t, IsVirtualStop("國道3號（虛擬站不停靠）"))
	assert.True(t, IsVirtualStop("國道3號(虛擬站不停靠)"))
	assert.False(t, IsVirtualStop("國道3號"))
}
