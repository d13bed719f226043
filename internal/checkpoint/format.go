package checkpoint

import (
	"time"

	"github.com/born-ml/resnet/internal/tensor"
)

// Format constants.
const (
	MagicBytes    = "RNCK"
	FormatVersion = 1

	prefixSize = 4 + 4 + 8 // magic + version + header size
)

// Header is the JSON header of a checkpoint.
type Header struct {
	FormatVersion int `json:"format_version"`

	// Model describes the network, e.g. "ResNet-164 (bottleneck, n=18)".
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`

	// Tensors are listed in binding order.
	Tensors  []TensorMeta      `json:"tensors"`
	Metadata map[string]string `json:"metadata"`

	// Checksum is the hex SHA-256 of the data section.
	Checksum string `json:"checksum"`
}

// TensorMeta describes one array in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // e.g. "stage2.block0.conv1.weight"
	DType  string `json:"dtype"`  // Always "float32"
	Shape  []int  `json:"shape"`  // Row-major
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Bytes
}

// Meta carries the descriptive part of a header.
type Meta struct {
	Model    string
	Metadata map[string]string
}

// Entry is one array to write.
type Entry struct {
	Name   string
	Tensor *tensor.RawTensor
}

// File is a loaded checkpoint.
type File struct {
	Header  Header
	Tensors []*tensor.RawTensor // Same order as Header.Tensors
}

// Len returns the number of arrays.
func (f *File) Len() int {
	return len(f.Tensors)
}

// Names returns the array names in order.
func (f *File) Names() []string {
	names := make([]string, len(f.Header.Tensors))
	for i, t := range f.Header.Tensors {
		names[i] = t.Name
	}
	return names
}
