package compile

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFlow = "../../../examples/flows/onboarding.yaml"

func TestCompileCommandAllSteps(t *testing.T) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{sampleFlow})

	require.NoError(t, cmd.Execute())

	var steps []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &steps))
	require.Len(t, steps, 4)
	assert.Equal(t, "Profile", steps[0]["step"])
	assert.Contains(t, steps[0], "dataSchema")
	assert.Contains(t, steps[0], "presentationSchema")

	action := steps[0]["actionDescriptor"].(map[string]any)
	assert.Equal(t, "saveProfile", action["actionName"])
	assert.Equal(t,
		"answers['color'] == 'Red' ? 'Reds' : (answers['color'] == 'Blue' ? 'Blues' : 'continue')",
		action["nextFlowDeterminationExpression"])
}

func TestCompileCommandSingleStep(t *testing.T) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{sampleFlow, "--step", "Blues"})

	require.NoError(t, cmd.Execute())

	var step map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &step))
	assert.Equal(t, "Blues", step["step"])
	action := step["actionDescriptor"].(map[string]any)
	assert.Equal(t, "'sky' in answers['blueTags'] ? 'end' : 'continue'", action["nextFlowDeterminationExpression"])
}

func TestCompileCommandUnknownStep(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{sampleFlow, "--step", "Nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step not found")
}

func TestCompileCommandRequiresArgument(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}
