package checkpoint

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/resnet/internal/tensor"
)

// Load reads and validates the checkpoint at path.
func Load(path string) (*File, error) {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	f, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Read decodes a gzip-compressed checkpoint stream. The header is validated
// against the data actually present and the data checksum is verified
// before any tensor is returned.
func Read(r io.Reader) (*File, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer zr.Close()

	header, err := readHeader(zr)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	if err := ValidateHeader(header, int64(len(data))); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(data), header.Checksum); err != nil {
		return nil, err
	}

	tensors := make([]*tensor.RawTensor, len(header.Tensors))
	for i, meta := range header.Tensors {
		values := decodeFloat32(data[meta.Offset : meta.Offset+meta.Size])
		raw, err := tensor.FromFloat32(values, tensor.Shape(meta.Shape), tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", meta.Name, err)
		}
		tensors[i] = raw
	}

	return &File{Header: *header, Tensors: tensors}, nil
}

func readHeader(r io.Reader) (*Header, error) {
	prefix := make([]byte, prefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("failed to read file prefix: %w", err)
	}
	if !bytes.Equal(prefix[:4], []byte(MagicBytes)) {
		return nil, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(prefix[4:8])
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(prefix[8:16])
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	return &header, nil
}

func decodeFloat32(data []byte) []float32 {
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return values
}
