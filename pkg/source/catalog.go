package source

import (
	"slices"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// Sample is a named notebook reachable by URL.
type Sample struct {
	Name        string `toml:"name" json:"name"`
	URL         string `toml:"url" json:"url"`
	Description string `toml:"description" json:"description,omitempty"`
}

const handbook = "https://raw.githubusercontent.com/jakevdp/PythonDataScienceHandbook/master/notebooks/"

// DefaultSamples returns the built-in sample notebooks.
func DefaultSamples() []Sample {
	return []Sample{
		{Name: "numpy", URL: handbook + "02.00-Introduction-to-NumPy.ipynb", Description: "Introduction to NumPy"},
		{Name: "pandas", URL: handbook + "03.00-Introduction-to-Pandas.ipynb", Description: "Introduction to Pandas"},
		{Name: "matplotlib", URL: handbook + "04.00-Introduction-To-Matplotlib.ipynb", Description: "Visualization with Matplotlib"},
		{Name: "sklearn", URL: handbook + "05.02-Introducing-Scikit-Learn.ipynb", Description: "Introducing Scikit-Learn"},
	}
}

// Catalog is an ordered set of samples looked up by name.
type Catalog struct {
	samples []Sample
	index   map[string]int
}

// NewCatalog returns a catalog holding the defaults followed by extra.
// An extra sample with a default's name replaces it in place.
func NewCatalog(extra ...Sample) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int)}
	for _, s := range DefaultSamples() {
		c.add(s)
	}
	for _, s := range extra {
		if err := errors.ValidateSampleName(s.Name); err != nil {
			return nil, err
		}
		if err := errors.ValidateURL(s.URL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "sample %s", s.Name)
		}
		c.add(s)
	}
	return c, nil
}

func (c *Catalog) add(s Sample) {
	if i, ok := c.index[s.Name]; ok {
		c.samples[i] = s
		return
	}
	c.index[s.Name] = len(c.samples)
	c.samples = append(c.samples, s)
}

// Lookup returns the sample called name.
func (c *Catalog) Lookup(name string) (Sample, error) {
	if i, ok := c.index[name]; ok {
		return c.samples[i], nil
	}
	return Sample{}, errors.New(errors.ErrCodeSampleNotFound, "unknown sample %q", name)
}

// Has reports whether a sample called name exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// List returns the samples in catalog order.
func (c *Catalog) List() []Sample {
	return slices.Clone(c.samples)
}
