package dataset

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp" // register BMP decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder

	"github.com/born-ml/resnet/internal/parallel"
)

// imageExtensions lists the file types LoadImageFolder decodes.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// LoadImageFolder reads a directory laid out as <root>/<class>/<file>,
// where <class> is the decimal class index. Every image is converted to
// RGB and scaled to opts.ImageSize x opts.ImageSize with Catmull-Rom
// resampling. Files are decoded concurrently but samples keep the lexical
// order of class then name. Other files and hidden entries are ignored.
func LoadImageFolder(root string, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	files, err := listImageFolder(root, opts.NumClasses)
	if err != nil {
		return nil, err
	}
	if opts.MaxSamples > 0 && len(files) > opts.MaxSamples {
		files = files[:opts.MaxSamples]
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("dataset: no images under %s", root)
	}

	size := opts.ImageSize
	d := &Dataset{
		Images:   make([]float32, len(files)*DefaultChannels*size*size),
		Labels:   make([]int32, len(files)),
		Channels: DefaultChannels,
		Height:   size,
		Width:    size,
	}
	errs := make([]error, len(files))
	parallel.For(len(files), func(i int) {
		img, err := decodeImage(files[i].path)
		if err != nil {
			errs[i] = err
			return
		}
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		writePlanes(d.Images[i*d.SampleSize():(i+1)*d.SampleSize()], dst, opts)
		d.Labels[i] = files[i].label
	}, parallel.DefaultConfig())
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return d, nil
}

type labelledFile struct {
	path  string
	label int32
}

func listImageFolder(root string, numClasses int) ([]labelledFile, error) {
	classDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	var files []labelledFile
	for _, dir := range classDirs {
		if !dir.IsDir() || strings.HasPrefix(dir.Name(), ".") {
			continue
		}
		label, err := strconv.Atoi(dir.Name())
		if err != nil || label < 0 || label >= numClasses {
			return nil, fmt.Errorf("dataset: class directory %q is not a class index in [0, %d)", dir.Name(), numClasses)
		}

		entries, err := os.ReadDir(filepath.Join(root, dir.Name()))
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") || !imageExtensions[strings.ToLower(filepath.Ext(name))] {
				continue
			}
			files = append(files, labelledFile{path: filepath.Join(root, dir.Name(), name), label: int32(label)})
		}
	}

	// ReadDir sorts by name, so "10" precedes "2"; order by label instead.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].label < files[j].label
	})
	return files, nil
}

func decodeImage(path string) (image.Image, error) {
	//nolint:gosec // G304: path comes from the dataset directory.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", path, err)
	}
	return img, nil
}

// writePlanes fills out with the R, G and B planes of img.
func writePlanes(out []float32, img *image.RGBA, opts Options) {
	b := img.Bounds()
	plane := b.Dx() * b.Dy()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			for c := 0; c < DefaultChannels; c++ {
				out[c*plane+y*b.Dx()+x] = opts.normalize(row[4*x+c], c)
			}
		}
	}
}
