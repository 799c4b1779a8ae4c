package wsd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeTemplate_ContainsMessageID(t *testing.T) {
	probe := fmt.Sprintf(probeTemplate, "test-id")
	require.Contains(t, probe, "uuid:test-id")
}
