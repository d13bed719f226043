package evaluate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/dataset"
	"github.com/born-ml/resnet/internal/tensor"
)

type Backend = *cpu.CPUBackend

// brightness predicts round(first pixel * 10) clamped to [0, 9] and records
// the batch sizes it sees.
type brightness struct {
	batches []int
}

func (b *brightness) Predict(x *tensor.Tensor[float32, Backend]) []int32 {
	s := x.Shape()
	b.batches = append(b.batches, s[0])
	labels := make([]int32, s[0])
	for i := range labels {
		v := int32(math.Round(float64(x.At(i, 0, 0, 0)) * 10))
		labels[i] = min(max(v, 0), 9)
	}
	return labels
}

func (b *brightness) OutputShape(in tensor.Shape) (tensor.Shape, error) {
	if len(in) != 4 || in[1] != 3 {
		return nil, fmt.Errorf("bad input %v", in)
	}
	return tensor.Shape{in[0], 10}, nil
}

// makeDataset builds n 2x2 images whose first pixel is pixels[i].
func makeDataset(pixels []float32, labels []int32) *dataset.Dataset {
	d := &dataset.Dataset{Channels: 3, Height: 2, Width: 2, Labels: labels}
	for _, p := range pixels {
		img := make([]float32, 12)
		img[0] = p
		d.Images = append(d.Images, img...)
	}
	return d
}

func TestScore(t *testing.T) {
	res, err := Score([]int32{0, 1, 1, 2}, []int32{0, 1, 2, 2}, 3)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 3, res.Correct)
	assert.InDelta(t, 0.75, res.Accuracy, 1e-12)
	assert.Equal(t, []float64{1, 1, 0.5}, res.PerClassAccuracy)
	assert.Equal(t, [][]int{{1, 0, 0}, {0, 1, 0}, {0, 1, 1}}, res.Confusion)
	assert.Equal(t, tensor.Shape{4}, res.PredictionShape())
	assert.InDelta(t, 2.5/3, res.MeanClassAccuracy(), 1e-12)

	class, acc := res.WorstClass()
	assert.Equal(t, 2, class)
	assert.InDelta(t, 0.5, acc, 1e-12)
}

func TestScore_AbsentClass(t *testing.T) {
	res, err := Score([]int32{0, 0}, []int32{0, 1}, 3)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0, 0}, res.PerClassAccuracy)
	assert.InDelta(t, 0.5, res.MeanClassAccuracy(), 1e-12)
}

func TestScore_Errors(t *testing.T) {
	_, err := Score([]int32{0}, []int32{0, 1}, 10)
	assert.Error(t, err)

	_, err = Score([]int32{10}, []int32{0}, 10)
	assert.ErrorContains(t, err, "prediction")

	_, err = Score([]int32{0}, []int32{-1}, 10)
	assert.ErrorContains(t, err, "label")
}

func TestRun(t *testing.T) {
	d := makeDataset([]float32{0.1, 0.2, 0.3, 0.4, 0.5}, []int32{1, 2, 3, 0, 5})
	model := &brightness{}

	var progress []int
	res, err := Run[Backend](model, d, cpu.New(), Options{
		BatchSize: 2,
		Progress:  func(done, total int) { progress = append(progress, done) },
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, model.batches)
	assert.Equal(t, []int{2, 4, 5}, progress)
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, res.Predictions)
	assert.Equal(t, 4, res.Correct)
	assert.InDelta(t, 0.8, res.Accuracy, 1e-12)
	assert.Equal(t, 2, res.BatchSize)
	assert.NotEqual(t, uuid.Nil, res.RunID)
}

func TestRun_DefaultBatchSize(t *testing.T) {
	d := makeDataset([]float32{0.1, 0.2, 0.3}, []int32{1, 2, 3})
	model := &brightness{}

	res, err := Run[Backend](model, d, cpu.New(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, model.batches)
	assert.Equal(t, 1.0, res.Accuracy)
}

func TestRun_ShapeMismatch(t *testing.T) {
	d := &dataset.Dataset{Channels: 1, Height: 2, Width: 2, Images: make([]float32, 4), Labels: []int32{0}}
	_, err := Run[Backend](&brightness{}, d, cpu.New(), Options{})
	assert.ErrorContains(t, err, "rejects input")

	d = makeDataset([]float32{0.1}, []int32{1})
	_, err = Run[Backend](&brightness{}, d, cpu.New(), Options{NumClasses: 5})
	assert.ErrorContains(t, err, "does not score")

	_, err = Run[Backend](&brightness{}, &dataset.Dataset{Channels: 3, Height: 2, Width: 2}, cpu.New(), Options{})
	assert.ErrorContains(t, err, "empty")
}

func TestResult_WriteText(t *testing.T) {
	res, err := Score([]int32{0, 1, 1, 1}, []int32{0, 1, 1, 0}, 10)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, res.WriteText(&buf))
	assert.Equal(t, "(4,)\nPercent same, 0.75\n", buf.String())

	buf.Reset()
	require.NoError(t, res.WriteDetails(&buf))
	assert.Contains(t, buf.String(), "3/4 correct")
	assert.Contains(t, buf.String(), "class 0: 0.5000")
}

func TestResult_JSON(t *testing.T) {
	res, err := Score([]int32{0, 1}, []int32{0, 0}, 2)
	require.NoError(t, err)
	res.RunID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	res.Model = "ResNet-20 (basic, n=3)"

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, res.SaveJSON(path))

	var buf bytes.Buffer
	require.NoError(t, res.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", decoded["run_id"])
	assert.Equal(t, "ResNet-20 (basic, n=3)", decoded["model"])
	assert.InDelta(t, 0.5, decoded["accuracy"], 1e-12)
	assert.Len(t, decoded["confusion"], 2)
}
