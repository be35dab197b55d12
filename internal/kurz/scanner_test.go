package kurz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickScanEmpty(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {"hurray"}}, DefaultConfig())
	for _, text := range []string{"", "   ", "\n\t"} {
		axis, intensity, ok := s.QuickScan(text)
		assert.False(t, ok)
		assert.Equal(t, "", axis)
		assert.Equal(t, 0.0, intensity)
	}
}

func TestQuickScanCapsIntensity(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {"hurray", "wonderful"}}, DefaultConfig())

	axis, intensity, ok := s.QuickScan("hurray wonderful")
	require.True(t, ok)
	assert.Equal(t, "joy", axis)
	assert.Equal(t, 1.0, intensity)

	_, intensity, ok = s.QuickScan("just hurray")
	require.True(t, ok)
	assert.InDelta(t, 0.7, intensity, 1e-12)
}

func TestQuickScanNoMatch(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {"hurray"}}, DefaultConfig())
	_, _, ok := s.QuickScan("nothing to see")
	assert.False(t, ok)
}

func TestQuickScanCaseInsensitive(t *testing.T) {
	s := New([]string{"anger"}, map[string][]string{"anger": {"Nienawidzę"}}, DefaultConfig())
	axis, _, ok := s.QuickScan("NIENAWIDZĘ tego")
	require.True(t, ok)
	assert.Equal(t, "anger", axis)
}

func TestQuickScanLongestTriggerFirst(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {"ha", "haha"}}, Config{PerMatchWeight: 0.3})
	_, intensity, ok := s.QuickScan("haha")
	require.True(t, ok)
	assert.InDelta(t, 0.3, intensity, 1e-12, "haha should count once")

	s = New([]string{"sadness"}, map[string][]string{"sadness": {"nie", "nienawidzę"}}, Config{PerMatchWeight: 0.3})
	assert.Equal(t, []float64{0.3}, s.ScanAll("nienawidzę"))
}

func TestQuickScanTieGoesToFirstAxis(t *testing.T) {
	triggers := map[string][]string{
		"joy":     {"yay"},
		"sadness": {"sigh"},
	}
	s := New([]string{"sadness", "joy"}, triggers, DefaultConfig())
	axis, _, ok := s.QuickScan("yay sigh")
	require.True(t, ok)
	assert.Equal(t, "sadness", axis)

	s = New([]string{"joy", "sadness"}, triggers, DefaultConfig())
	axis, _, _ = s.QuickScan("yay sigh")
	assert.Equal(t, "joy", axis)

	axis, _, _ = s.QuickScan("yay sigh sigh")
	assert.Equal(t, "sadness", axis, "strictly more matches wins")
}

func TestQuickScanQuotesTriggers(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {":)", "a.b"}}, DefaultConfig())
	_, _, ok := s.QuickScan("axb")
	assert.False(t, ok)
	axis, _, ok := s.QuickScan("hi :)")
	require.True(t, ok)
	assert.Equal(t, "joy", axis)
}

func TestScanAll(t *testing.T) {
	s := New(
		[]string{"joy", "sadness", "fear"},
		map[string][]string{
			"joy":     {"yay"},
			"sadness": {"sigh"},
			"unknown": {"boo"},
		},
		Config{PerMatchWeight: 0.4},
	)
	got := s.ScanAll("yay yay sigh boo")
	require.Len(t, got, 3)
	assert.InDelta(t, 0.8, got[0], 1e-12)
	assert.InDelta(t, 0.4, got[1], 1e-12)
	assert.Equal(t, 0.0, got[2])

	assert.Equal(t, []float64{0, 0, 0}, s.ScanAll(""))
}

func TestAddTrigger(t *testing.T) {
	s := New([]string{"joy", "fear"}, nil, DefaultConfig())
	_, _, ok := s.QuickScan("eek")
	require.False(t, ok)

	assert.True(t, s.AddTrigger("fear", "  EEK "))
	axis, _, ok := s.QuickScan("eek!")
	require.True(t, ok)
	assert.Equal(t, "fear", axis)

	assert.False(t, s.AddTrigger("fear", "eek"), "duplicate")
	assert.False(t, s.AddTrigger("fear", "   "), "empty")
	assert.False(t, s.AddTrigger("calm", "zen"), "unknown axis")
	assert.Equal(t, []string{"eek"}, s.Triggers("fear"))
}

func TestReplaceTriggers(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {"yay"}}, DefaultConfig())
	s.ReplaceTriggers(map[string][]string{"joy": {"hooray", "Hooray", ""}})

	_, _, ok := s.QuickScan("yay")
	assert.False(t, ok)
	_, _, ok = s.QuickScan("hooray")
	assert.True(t, ok)
	assert.Equal(t, []string{"hooray"}, s.Triggers("joy"))
}

func TestNewCopiesInputs(t *testing.T) {
	axes := []string{"joy"}
	triggers := map[string][]string{"joy": {"yay"}}
	s := New(axes, triggers, Config{})
	axes[0] = "fear"
	triggers["joy"][0] = "nope"

	axis, intensity, ok := s.QuickScan("yay")
	require.True(t, ok)
	assert.Equal(t, "joy", axis)
	assert.InDelta(t, 0.7, intensity, 1e-12, "zero config falls back to defaults")
}

func TestQuickScanLongInput(t *testing.T) {
	s := New([]string{"joy"}, map[string][]string{"joy": {"yay"}}, DefaultConfig())
	text := strings.Repeat("yay ", 50000) + "\xff\xfe"
	axis, intensity, ok := s.QuickScan(text)
	require.True(t, ok)
	assert.Equal(t, "joy", axis)
	assert.Equal(t, 1.0, intensity)
}
