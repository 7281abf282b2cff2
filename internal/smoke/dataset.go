package smoke

import (
	"fmt"
	"math/rand/v2"

	"github.com/scigolib/hdf5"
)

// Dataset describes a two dimensional float64 dataset
type Dataset struct {
	Name string
	Rows uint64
	Cols uint64
}

// DefaultDatasets are the datasets the example is run against
var DefaultDatasets = []Dataset{
	{Name: "test_dataset1", Rows: 9000, Cols: 128},
	{Name: "test_dataset2", Rows: 1000, Cols: 128},
}

// WriteDatasets creates path with random integral values in [0, 128) stored
// as float64
func WriteDatasets(path string, datasets []Dataset, seed uint64) error {
	fw, err := hdf5.CreateForWrite(path, hdf5.CreateTruncate)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for _, d := range datasets {
		ds, err := fw.CreateDataset("/"+d.Name, hdf5.Float64, []uint64{d.Rows, d.Cols})
		if err != nil {
			fw.Close()
			return fmt.Errorf("failed to create dataset %s: %w", d.Name, err)
		}

		data := make([]float64, d.Rows*d.Cols)
		for i := range data {
			data[i] = float64(rng.IntN(128))
		}

		if err := ds.Write(data); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write dataset %s: %w", d.Name, err)
		}
	}

	return fw.Close()
}

// VerifyDatasets reads path back and checks every dataset is present with
// the expected number of values
func VerifyDatasets(path string, datasets []Dataset) error {
	f, err := hdf5.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	found := map[string]*hdf5.Dataset{}
	f.Walk(func(_ string, obj hdf5.Object) {
		if ds, ok := obj.(*hdf5.Dataset); ok {
			found[ds.Name()] = ds
		}
	})

	for _, d := range datasets {
		ds, ok := found[d.Name]
		if !ok {
			return fmt.Errorf("dataset %s not found in %s", d.Name, path)
		}

		values, err := ds.Read()
		if err != nil {
			return fmt.Errorf("failed to read dataset %s: %w", d.Name, err)
		}

		if uint64(len(values)) != d.Rows*d.Cols {
			return fmt.Errorf("dataset %s has %d values, expected %d", d.Name, len(values), d.Rows*d.Cols)
		}

		for _, v := range values {
			if v < 0 || v >= 128 {
				return fmt.Errorf("dataset %s has out of range value %v", d.Name, v)
			}
		}
	}

	return nil
}
