package knn

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// artifact is the on-disk form of a fitted classifier. It carries no
// feature names; readers must know the column layout.
type artifact struct {
	K       int         `json:"k"`
	Samples [][]float64 `json:"samples"`
	Labels  []int       `json:"labels"`
}

// Save writes the fitted classifier to w.
func (c *Classifier) Save(w io.Writer) error {
	if len(c.samples) == 0 {
		return ErrNotFitted
	}
	return json.NewEncoder(w).Encode(artifact{K: c.k, Samples: c.samples, Labels: c.labels})
}

// SaveFile writes the classifier to path, creating parent directories.
func (c *Classifier) SaveFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := c.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write model: %w", err)
	}
	return f.Close()
}

// Load reads a classifier written by Save and refits it.
func Load(r io.Reader) (*Classifier, error) {
	var a artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	c, err := New(a.K)
	if err != nil {
		return nil, err
	}
	if err := c.Fit(a.Samples, a.Labels); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return c, nil
}

// LoadFile reads a classifier from path.
func LoadFile(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()
	return Load(f)
}
