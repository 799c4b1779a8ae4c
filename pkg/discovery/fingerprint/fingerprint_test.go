package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGuess_MatchesKnownPattern(t *testing.T) {
	require.Equal(t, "Ubuntu", Guess("Server: nginx (Ubuntu)"))
	require.Equal(t, "OpenWrt", Guess("BusyBox on OpenWrt router"))
}

func TestGuess_MostSpecificPatternWinsAcrossTexts(t *testing.T) {
	// "Linux" appears in the first text and "Ubuntu" in the second; Ubuntu
	// is checked earlier in the priority table so it should win even though
	// it isn't the first text passed.
	require.Equal(t, "Ubuntu", Guess("Linux 5.15 generic", "Ubuntu 22.04"))
}

func TestGuess_NoMatchReturnsEmpty(t *testing.T) {
	require.Equal(t, "", Guess("", "totally unrecognized firmware string"))
}

func TestGuess_IOSWordBoundaryAvoidsFalsePositive(t *testing.T) {
	require.Equal(t, "", Guess("biosphere appliance"))
}
