package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "Error: boom", FormatError(errors.New("boom")))
	assert.Equal(t, "✓ done", FormatSuccess("done"))
	assert.Equal(t, "⚠ careful", FormatWarning("careful"))
}

func TestConsole_StepNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	ran := false
	err := c.Step("Retrieving heartrate data...", func() error {
		ran = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "Retrieving heartrate data...\n", buf.String())
}

func TestConsole_StepPropagatesError(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	boom := errors.New("boom")

	err := c.Step("Writing data to out.json...", func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "Writing data to out.json...")
}

func TestConsole_StatusLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Success("Done.")
	c.Warning("Could not open a browser")

	assert.Contains(t, buf.String(), "✓ Done.")
	assert.Contains(t, buf.String(), "⚠ Could not open a browser")
}

func TestConsole_RenderSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.RenderSummary([]SummaryRow{
		{Key: "Output", Value: "out.json"},
		{Key: "Window", Value: ""},
	})

	out := buf.String()
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "out.json")
	assert.Contains(t, out, "Window")
	assert.Contains(t, out, "-")
}
