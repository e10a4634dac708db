package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSecond(t *testing.T) {
	assert.Equal(t, "00:00:00", formatSecond(0))
	assert.Equal(t, "01:01:05", formatSecond(3665))
	assert.Equal(t, "23:59:59", formatSecond(86399))
}

func TestPrintMotions(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, printMotions(cmd, nil))
	assert.Equal(t, "no motion found\n", buf.String())

	buf.Reset()
	require.NoError(t, printMotions(cmd, []int{61}))
	assert.Contains(t, buf.String(), "00:01:01")
	assert.Contains(t, buf.String(), "61")
}

func TestPrintGrid(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, printGrid(cmd, []int{1, 20, 3, 4}, 2))
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "20")
	assert.Contains(t, string(lines[1]), "4")

	assert.Error(t, printGrid(cmd, []int{1}, 0))
}
