// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Im2col convolutions multiplied with gonum's SGEMM
//   - Batch items convolved in parallel on the physical cores
//   - NumPy-compatible broadcasting for add and multiply
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/resnet/backend/cpu"
//	    "github.com/born-ml/resnet/resnet"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    net, err := resnet.New(resnet.DefaultConfig(resnet.Basic), backend)
//	    ...
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each operation allocates
// its output and does not share mutable state.
package cpu
