// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/born-ml/resnet/backend/cpu"
	"github.com/born-ml/resnet/tensor"
)

func TestNewWithWorkers_SameResult(t *testing.T) {
	for _, workers := range []int{1, 4} {
		backend := cpu.NewWithWorkers(workers)
		input := tensor.Ones[float32](tensor.Shape{3, 1, 3, 3}, backend)
		kernel := tensor.Ones[float32](tensor.Shape{1, 1, 3, 3}, backend)

		out := backend.Conv2D(input.Raw(), kernel.Raw(), 1, 0)
		got := out.AsFloat32()
		if len(got) != 3 {
			t.Fatalf("workers=%d: got %d outputs, want 3", workers, len(got))
		}
		for i, v := range got {
			if v != 9 {
				t.Errorf("workers=%d: output %d = %v, want 9", workers, i, v)
			}
		}
	}
}

func TestName(t *testing.T) {
	if got := cpu.New().Name(); got == "" {
		t.Error("Name() is empty")
	}
}
