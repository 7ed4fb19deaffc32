package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tupyy/hwdetect-ng/internal/entity"
	"github.com/tupyy/hwdetect-ng/internal/profile"
)

func match(rule string, settings ...string) profile.Match {
	return profile.Match{
		Rule:   profile.Rule{Name: rule, Settings: settings},
		Device: entity.Device{Key: entity.DeviceKey{Bus: entity.PCIBus, Address: "00:00.0"}},
	}
}

func TestSynthesizeCollapsesExactDuplicates(t *testing.T) {
	// two rules contribute the same text for the same device
	fragment, err := Synthesize([]profile.Match{
		match("first", "x=1"),
		match("second", "x=1"),
	})
	require.NoError(t, err)

	require.Len(t, fragment.Lines, 1)
	assert.Equal(t, "x=1", fragment.Lines[0].Text)
	assert.Equal(t, "first", fragment.Lines[0].Rule, "first occurrence keeps its rule tag")
}

func TestSynthesizeLaterRuleWinsOnKeyConflict(t *testing.T) {
	fragment, err := Synthesize([]profile.Match{
		match("first", "driver = modesetting;", "other = 1;"),
		match("second", "driver = nvidia;"),
	})
	require.NoError(t, err)

	require.Len(t, fragment.Lines, 2)
	// the later value wins but keeps the key's first position
	assert.Equal(t, "driver = nvidia;", fragment.Lines[0].Text)
	assert.Equal(t, "second", fragment.Lines[0].Rule)
	assert.Equal(t, "other = 1;", fragment.Lines[1].Text)
}

func TestSynthesizeOrderFollowsMatches(t *testing.T) {
	fragment, err := Synthesize([]profile.Match{
		match("a", "one"),
		match("b", "two"),
		match("c", "three"),
	})
	require.NoError(t, err)

	assert.Equal(t, "one\ntwo\nthree\n", fragment.Render())
}

func TestSynthesizeEmptySettingIsFatal(t *testing.T) {
	_, err := Synthesize([]profile.Match{match("broken", " ")})
	assert.ErrorIs(t, err, ErrEmptySetting)
}

func TestSynthesizeZeroMatches(t *testing.T) {
	fragment, err := Synthesize(nil)
	require.NoError(t, err)
	assert.Empty(t, fragment.Lines)
	assert.Equal(t, "", fragment.Render())
}

func TestRenderWithHeader(t *testing.T) {
	fragment, err := Synthesize([]profile.Match{match("a", "x=1")})
	require.NoError(t, err)

	withID := fragment.RenderWithHeader("abc123")
	assert.Equal(t, "# Generated by hwdetect-ng. Do not edit.\n# machine-id: abc123\n\nx=1\n", withID)

	withoutID := fragment.RenderWithHeader("")
	assert.Equal(t, "# Generated by hwdetect-ng. Do not edit.\n\nx=1\n", withoutID)
}

func TestSettingKey(t *testing.T) {
	tests := []struct {
		text string
		key  string
	}{
		{text: "a = 1;", key: "a"},
		{text: "a=2", key: "a"},
		{text: "enable-network-driver", key: "enable-network-driver"},
		{text: "= weird", key: "= weird"},
	}

	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			assert.Equal(t, test.key, settingKey(test.text))
		})
	}
}
