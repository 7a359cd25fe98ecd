package source

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/nbenv/pkg/errors"
)

// ReadFile reads a local notebook and checks it is well-formed JSON.
func ReadFile(path string) ([]byte, error) {
	if err := errors.ValidateLocalPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeAcquisition, err, "no such file: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAcquisition, err, "error reading file %s", path)
	}
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeAcquisition, "invalid .ipynb file: %s is not valid JSON", path)
	}
	return data, nil
}
