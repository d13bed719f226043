package checkpoint

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Entries converts parameters into checkpoint entries, keeping their order.
func Entries[B tensor.Backend](params []*nn.Parameter[B]) []Entry {
	entries := make([]Entry, len(params))
	for i, p := range params {
		entries[i] = Entry{Name: p.Name(), Tensor: p.Tensor().Raw()}
	}
	return entries
}

// Save writes entries to path, replacing any existing file.
func Save(path string, entries []Entry, meta Meta) (err error) {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()

	buf := bufio.NewWriter(file)
	if err := Write(buf, entries, meta); err != nil {
		return err
	}
	return buf.Flush()
}

// Write encodes entries as a gzip-compressed checkpoint stream.
func Write(w io.Writer, entries []Entry, meta Meta) error {
	header := Header{
		FormatVersion: FormatVersion,
		Model:         meta.Model,
		CreatedAt:     time.Now().UTC(),
		Tensors:       make([]TensorMeta, 0, len(entries)),
		Metadata:      meta.Metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Offsets and checksum are known before any byte is written.
	sum := newChecksum()
	encoded := make([][]byte, len(entries))
	var offset int64
	for i, e := range entries {
		if e.Tensor.DType() != tensor.Float32 {
			return fmt.Errorf("tensor %s: only float32 can be stored, got %v", e.Name, e.Tensor.DType())
		}
		encoded[i] = encodeFloat32(e.Tensor.AsFloat32())
		size := int64(len(encoded[i]))
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   e.Name,
			DType:  e.Tensor.DType().String(),
			Shape:  []int(e.Tensor.Shape().Clone()),
			Offset: offset,
			Size:   size,
		})
		sum.Write(encoded[i])
		offset += size
	}
	header.Checksum = hex.EncodeToString(sum.Sum(nil))

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	zw := gzip.NewWriter(w)
	if _, err := io.WriteString(zw, MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(zw, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(zw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := zw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, data := range encoded {
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", entries[i].Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

func encodeFloat32(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}
