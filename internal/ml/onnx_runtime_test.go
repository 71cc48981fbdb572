package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadONNXModelRequiresSingleOutput(t *testing.T) {
	_, err := LoadONNXModel("model.onnx", "", []string{"x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one output, got 0")

	_, err = LoadONNXModel("model.onnx", "", []string{"x"}, []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 2")
}

func TestRunWithoutSession(t *testing.T) {
	m := &ONNXModel{}
	_, err := m.Run(nil, []int64{1, 1})
	assert.EqualError(t, err, "model session is nil")
}
