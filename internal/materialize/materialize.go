// Package materialize writes one resolved case as a model artifact derived
// from a copy of the base model.
package materialize

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"casegen/internal/resolve"
	"casegen/internal/topology"
)

type ArtifactAlreadyExistsError struct {
	Path string
}

func (e *ArtifactAlreadyExistsError) Error() string {
	return fmt.Sprintf("artifact already exists: %s", e.Path)
}

type Options struct {
	Dir       string
	Overwrite bool
}

type Artifact struct {
	Path     string
	Size     int
	Inactive []string
}

// Apply returns a copy of base carrying the resolved values and activation.
// The base model is not modified.
func Apply(base *topology.Model, set *resolve.ResolvedBoundarySet, activation resolve.Activation, name string) (*topology.Model, error) {
	m := base.Clone()
	m.Name = name

	for _, key := range set.Parameters() {
		value, _ := set.Parameter(key.Component, key.Parameter)
		if err := m.SetParameter(key.Component, key.Parameter, value); err != nil {
			return nil, fmt.Errorf("applying %s.%s: %w", key.Component, key.Parameter, err)
		}
	}
	for _, key := range set.Settings() {
		value, _ := set.Setting(key.Namespace, key.Parameter)
		m.SetSetting(string(key.Namespace), key.Parameter, value)
	}

	for _, sink := range activation.Sinks() {
		state, _ := activation.State(sink)
		if !state.Addressed {
			continue
		}
		if err := m.SetActive(sink, state.Active); err != nil {
			return nil, fmt.Errorf("applying activation: %w", err)
		}
	}
	return m, nil
}

// Materialize applies the case to a copy of base and writes it to
// opts.Dir/artifactName. An existing file is left untouched unless
// opts.Overwrite is set.
func Materialize(base *topology.Model, set *resolve.ResolvedBoundarySet, activation resolve.Activation, artifactName string, opts Options) (*Artifact, error) {
	m, err := Apply(base, set, activation, set.Case)
	if err != nil {
		return nil, err
	}
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(opts.Dir, artifactName)
	if err := write(path, data, opts.Overwrite); err != nil {
		return nil, err
	}
	var inactive []string
	for _, sink := range activation.Sinks() {
		if !m.IsActive(sink) {
			inactive = append(inactive, sink)
		}
	}
	return &Artifact{Path: path, Size: len(data), Inactive: inactive}, nil
}

// WriteModel marshals m and writes it to path the way artifacts are written.
func WriteModel(m *topology.Model, path string, overwrite bool) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return write(path, data, overwrite)
}

// Exists reports whether an artifact is already present in dir.
func Exists(dir, artifactName string) (bool, error) {
	_, err := os.Stat(filepath.Join(dir, artifactName))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// write stages data in a temporary file next to path and renames it into
// place, so a reader never sees a partial artifact.
func write(path string, data []byte, overwrite bool) error {
	if !overwrite {
		exists, err := Exists(filepath.Dir(path), filepath.Base(path))
		if err != nil {
			return fmt.Errorf("checking %s: %w", path, err)
		}
		if exists {
			return &ArtifactAlreadyExistsError{Path: path}
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
