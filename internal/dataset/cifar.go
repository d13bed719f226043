package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// LoadCIFAR10 reads one or more CIFAR-10 binary batch files, in order.
//
// CIFAR-10 binary format, one record per image:
//
//	label: 1 byte (0-9)
//	pixels: 3072 bytes, the 1024 red values, then green, then blue,
//	        each plane row-major 32x32
func LoadCIFAR10(paths []string, opts Options) (*Dataset, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("dataset: no CIFAR-10 files given")
	}
	opts, err := cifarOptions(opts)
	if err != nil {
		return nil, err
	}

	d := &Dataset{Channels: DefaultChannels, Height: opts.ImageSize, Width: opts.ImageSize}
	for _, path := range paths {
		if err := loadCIFARFile(d, path, opts); err != nil {
			return nil, err
		}
		if opts.MaxSamples > 0 && d.Len() >= opts.MaxSamples {
			break
		}
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("dataset: no records in %v", paths)
	}
	return truncate(d, opts.MaxSamples), nil
}

func cifarOptions(opts Options) (Options, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return opts, err
	}
	if opts.ImageSize != DefaultImageSize {
		return opts, fmt.Errorf("dataset: CIFAR-10 images are %dx%d, got image size %d",
			DefaultImageSize, DefaultImageSize, opts.ImageSize)
	}
	return opts, nil
}

func loadCIFARFile(d *Dataset, path string, opts Options) error {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	defer file.Close()

	if err := readCIFAR(d, bufio.NewReader(file), opts); err != nil {
		return fmt.Errorf("dataset: %s: %w", path, err)
	}
	return nil
}

// ReadCIFAR10 decodes CIFAR-10 records from r until EOF.
func ReadCIFAR10(r io.Reader, opts Options) (*Dataset, error) {
	opts, err := cifarOptions(opts)
	if err != nil {
		return nil, err
	}
	d := &Dataset{Channels: DefaultChannels, Height: opts.ImageSize, Width: opts.ImageSize}
	if err := readCIFAR(d, r, opts); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return truncate(d, opts.MaxSamples), nil
}

func readCIFAR(d *Dataset, r io.Reader, opts Options) error {
	plane := DefaultImageSize * DefaultImageSize
	record := make([]byte, 1+DefaultChannels*plane)

	for n := d.Len(); opts.MaxSamples == 0 || n < opts.MaxSamples; n++ {
		read, err := io.ReadFull(r, record)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("record %d truncated: %d of %d bytes", n, read, len(record))
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", n, err)
		}

		label := int(record[0])
		if label >= opts.NumClasses {
			return fmt.Errorf("record %d: label %d out of range [0, %d)", n, label, opts.NumClasses)
		}
		d.Labels = append(d.Labels, int32(label))

		pixels := record[1:]
		for c := 0; c < DefaultChannels; c++ {
			for _, v := range pixels[c*plane : (c+1)*plane] {
				d.Images = append(d.Images, opts.normalize(v, c))
			}
		}
	}
	return nil
}
