package lamp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLightingRequest(t *testing.T) {
	req, err := LightingRequest([]string{"#ff8800"})
	require.NoError(t, err)
	require.Equal(t, "#ff8800", *req.Hex)
	require.Nil(t, req.R)
	require.Nil(t, req.Pattern)

	req, err = LightingRequest([]string{"10", "20", "30", "fire"})
	require.NoError(t, err)
	require.Nil(t, req.Hex)
	require.Equal(t, 10, *req.R)
	require.Equal(t, 20, *req.G)
	require.Equal(t, 30, *req.B)
	require.Equal(t, "fire", *req.Pattern)

	req, err = LightingRequest([]string{"00ff00", "breathe"})
	require.NoError(t, err)
	require.Equal(t, "00ff00", *req.Hex)
	require.Equal(t, "breathe", *req.Pattern)

	_, err = LightingRequest(nil)
	require.Error(t, err)
	_, err = LightingRequest([]string{"1", "x", "3"})
	require.Error(t, err)
}
