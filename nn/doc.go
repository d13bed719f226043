// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the inference layers ResNets are built from.
//
// Every layer implements Module: Forward, Parameters (in a fixed order),
// OutputShape and String. Weights are drawn from an Init at construction;
// a seeded source makes construction deterministic.
//
// Example:
//
//	src := nn.NewSource(42)
//	block := nn.NewSequential[B](
//	    nn.NewBatchNorm2D(16, backend),
//	    nn.NewReLU[B](),
//	    nn.NewConv2D(16, 16, 3, 3, 1, 1, false, nn.HeNormal{Gain: nn.RectifierGain, Src: src}, backend),
//	)
package nn
