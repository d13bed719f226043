package evaluate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/resnet/internal/tensor"
)

// Result is the outcome of an evaluation run.
type Result struct {
	RunID     uuid.UUID     `json:"run_id"`
	Model     string        `json:"model,omitempty"`
	BatchSize int           `json:"batch_size"`
	Duration  time.Duration `json:"duration_ns"`

	Predictions []int32 `json:"predictions"`
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	Accuracy    float64 `json:"accuracy"`

	// PerClassAccuracy[c] is the recall of class c; 0 for classes absent
	// from the labels.
	PerClassAccuracy []float64 `json:"per_class_accuracy"`

	// Confusion[label][prediction] counts samples.
	Confusion [][]int `json:"confusion"`
}

// Score compares predictions with labels over numClasses classes.
func Score(predictions, labels []int32, numClasses int) (*Result, error) {
	if len(predictions) != len(labels) {
		return nil, fmt.Errorf("evaluate: %d predictions for %d labels", len(predictions), len(labels))
	}
	if numClasses < 1 {
		return nil, fmt.Errorf("evaluate: invalid number of classes %d", numClasses)
	}

	confusion := make([][]int, numClasses)
	for i := range confusion {
		confusion[i] = make([]int, numClasses)
	}

	correct := 0
	hits := make([]float64, numClasses)
	counts := make([]float64, numClasses)
	for i, label := range labels {
		pred := predictions[i]
		if label < 0 || int(label) >= numClasses {
			return nil, fmt.Errorf("evaluate: label %d of sample %d out of range", label, i)
		}
		if pred < 0 || int(pred) >= numClasses {
			return nil, fmt.Errorf("evaluate: prediction %d of sample %d out of range", pred, i)
		}
		confusion[label][pred]++
		counts[label]++
		if pred == label {
			correct++
			hits[label]++
		}
	}

	perClass := make([]float64, numClasses)
	floats.DivTo(perClass, hits, counts)
	for c, n := range counts {
		if n == 0 {
			perClass[c] = 0
		}
	}

	res := &Result{
		Predictions:      predictions,
		Total:            len(labels),
		Correct:          correct,
		PerClassAccuracy: perClass,
		Confusion:        confusion,
	}
	if res.Total > 0 {
		res.Accuracy = float64(correct) / float64(res.Total)
	}
	return res, nil
}

// PredictionShape returns the shape of the prediction array, (N,).
func (r *Result) PredictionShape() tensor.Shape {
	return tensor.Shape{len(r.Predictions)}
}

// MeanClassAccuracy averages PerClassAccuracy over the classes present in
// the labels.
func (r *Result) MeanClassAccuracy() float64 {
	present := make([]float64, 0, len(r.PerClassAccuracy))
	for c, row := range r.Confusion {
		if floats.Sum(intsToFloats(row)) > 0 {
			present = append(present, r.PerClassAccuracy[c])
		}
	}
	if len(present) == 0 {
		return 0
	}
	return floats.Sum(present) / float64(len(present))
}

// WorstClass returns the present class with the lowest accuracy.
func (r *Result) WorstClass() (class int, accuracy float64) {
	class = -1
	for c, row := range r.Confusion {
		if floats.Sum(intsToFloats(row)) == 0 {
			continue
		}
		if class < 0 || r.PerClassAccuracy[c] < accuracy {
			class, accuracy = c, r.PerClassAccuracy[c]
		}
	}
	return class, accuracy
}

// WriteText prints the prediction array shape and the match fraction:
//
//	(10000,)
//	Percent same, 0.9457
func (r *Result) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\nPercent same, %v\n", r.PredictionShape(), r.Accuracy)
	return err
}

// WriteDetails prints per-class accuracy and the confusion matrix.
func (r *Result) WriteDetails(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s: %d/%d correct in %v (batch size %d)\n",
		r.RunID, r.Correct, r.Total, r.Duration.Round(time.Millisecond), r.BatchSize)
	for c, acc := range r.PerClassAccuracy {
		fmt.Fprintf(&sb, "  class %d: %.4f\n", c, acc)
	}
	fmt.Fprintf(&sb, "  mean class accuracy: %.4f\n", r.MeanClassAccuracy())
	sb.WriteString("confusion (rows: label, columns: prediction)\n")
	for _, row := range r.Confusion {
		for j, n := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%5d", n)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes the result as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("evaluate: encode report: %w", err)
	}
	return nil
}

// SaveJSON writes the JSON report to path.
func (r *Result) SaveJSON(path string) (err error) {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("evaluate: %w", cerr)
		}
	}()
	return r.WriteJSON(file)
}

func intsToFloats(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
