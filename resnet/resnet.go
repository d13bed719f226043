// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package resnet builds pre-activation residual networks for image
// classification.
//
// A network is a 3x3 stem, three stages of residual blocks with widths
// C, 2C and 4C, and a pooled softmax head. Basic blocks give depth 6n+2,
// bottleneck blocks 9n+2.
//
// Example:
//
//	cfg := resnet.DefaultConfig(resnet.Bottleneck) // ResNet-164
//	net, err := resnet.New(cfg, cpu.New())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	labels := net.Predict(images)
package resnet

import (
	"io"

	"github.com/born-ml/resnet/internal/resnet"
	"github.com/born-ml/resnet/internal/tensor"
)

// Variant selects the residual block type.
type Variant = resnet.Variant

// Block variants.
const (
	Basic      = resnet.Basic
	Bottleneck = resnet.Bottleneck
)

// NumStages is the number of residual stages in every network.
const NumStages = resnet.NumStages

// ErrInvalidConfig is returned for configurations that cannot be built.
var ErrInvalidConfig = resnet.ErrInvalidConfig

// Config describes the network to build.
type Config = resnet.Config

// Network is a constructed pre-activation ResNet.
type Network[B tensor.Backend] = resnet.Network[B]

// Block is one residual unit.
type Block[B tensor.Backend] = resnet.Block[B]

// LayerInfo describes one layer of a network for summaries.
type LayerInfo = resnet.LayerInfo

// DefaultConfig returns the CIFAR-10 configuration for variant with n=18.
func DefaultConfig(variant Variant) Config {
	return resnet.DefaultConfig(variant)
}

// ParseVariant parses "basic" or "bottleneck".
func ParseVariant(s string) (Variant, error) {
	return resnet.ParseVariant(s)
}

// New builds and initializes a network.
func New[B tensor.Backend](cfg Config, backend B) (*Network[B], error) {
	return resnet.New(cfg, backend)
}

// ParseConfig reads a YAML model configuration.
func ParseConfig(data []byte) (Config, error) {
	return resnet.ParseConfig(data)
}

// LoadConfig reads a YAML model configuration from path.
func LoadConfig(path string) (Config, error) {
	return resnet.LoadConfig(path)
}

// Summarizer is what WriteSummary needs from a network.
type Summarizer = resnet.Summarizer

// WriteSummary prints a per-layer table of net to w.
func WriteSummary(w io.Writer, net Summarizer) error {
	return resnet.WriteSummary(w, net)
}
