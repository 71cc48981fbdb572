package ml

import (
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"totoforecast/pkg/errors"
)

var (
	envOnce sync.Once
	envErr  error
)

// Input is one named float32 input tensor
type Input struct {
	Name  string
	Shape []int64
	Data  []float32
}

// ONNXModel wraps ONNX Runtime session for ML inference
type ONNXModel struct {
	session     *onnxruntime.DynamicAdvancedSession
	inputNames  []string
	outputNames []string
}

// initEnvironment initializes the ONNX runtime once per process. An empty
// libraryPath uses the platform default shared library.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			onnxruntime.SetSharedLibraryPath(libraryPath)
		}
		if onnxruntime.IsInitialized() {
			return
		}
		envErr = onnxruntime.InitializeEnvironment()
	})
	return envErr
}

// LoadONNXModel loads an ONNX model from file with the given input and output names
func LoadONNXModel(modelPath, libraryPath string, inputNames, outputNames []string) (*ONNXModel, error) {
	if len(outputNames) != 1 {
		return nil, errors.Newf("model must declare exactly one output, got %d", len(outputNames))
	}
	if err := initEnvironment(libraryPath); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	// dynamic session: the runner dimension changes per race
	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load ONNX model %s", modelPath)
	}

	return &ONNXModel{
		session:     session,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// Run feeds inputs in the order the model was loaded with and returns the
// first output, pre-allocated with outputShape
func (m *ONNXModel) Run(inputs []Input, outputShape []int64) ([]float32, error) {
	if m.session == nil {
		return nil, errors.New("model session is nil")
	}
	if len(inputs) != len(m.inputNames) {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "model takes %d inputs, got %d", len(m.inputNames), len(inputs))
	}

	values := make([]onnxruntime.Value, 0, len(inputs))
	for i, in := range inputs {
		if in.Name != m.inputNames[i] {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "input %d is %q, model expects %q", i, in.Name, m.inputNames[i])
		}

		tensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(in.Shape...), in.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create input tensor %s", in.Name)
		}
		defer tensor.Destroy()
		values = append(values, tensor)
	}

	outShape := onnxruntime.NewShape(outputShape...)
	output := make([]float32, outShape.FlattenedSize())
	outTensor, err := onnxruntime.NewTensor(outShape, output)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create output tensor")
	}
	defer outTensor.Destroy()

	if err := m.session.Run(values, []onnxruntime.Value{outTensor}); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	return outTensor.GetData(), nil
}

// Destroy cleans up the ONNX session
func (m *ONNXModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
