package study

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"vlingest/configs"
	"vlingest/internal/config"
)

// ErrUnknownStudy is returned when a study name matches no embedded
// descriptor.
var ErrUnknownStudy = errors.New("unknown study")

const embeddedDir = "studies"

// EmbeddedNames lists the embedded study descriptors by name, sorted.
func EmbeddedNames() ([]string, error) {
	entries, err := fs.ReadDir(configs.Studies, embeddedDir)
	if err != nil {
		return nil, fmt.Errorf("read embedded studies: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := path.Ext(name); ext == ".yaml" || ext == ".yml" || ext == ".json" {
			out = append(out, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadEmbedded decodes the embedded descriptor called name.
func LoadEmbedded(name string) (config.Study, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		p := path.Join(embeddedDir, name+ext)
		b, err := fs.ReadFile(configs.Studies, p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return config.Study{}, fmt.Errorf("read %s: %w", p, err)
		}
		return config.DecodeStudy(b, p)
	}
	return config.Study{}, fmt.Errorf("%w: %q", ErrUnknownStudy, name)
}

// LoadFile decodes a descriptor from disk.
func LoadFile(p string) (config.Study, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return config.Study{}, fmt.Errorf("read study: %w", err)
	}
	return config.DecodeStudy(b, p)
}

// Resolve loads the descriptor a pipeline refers to. Relative ref paths are
// resolved against base (normally the pipeline file's directory). A ref
// naming a study whose descriptor also sets a different study_id keeps the
// descriptor's id.
func Resolve(ref config.StudyRef, base string) (config.Study, error) {
	if ref.Path == "" {
		return LoadEmbedded(ref.Name)
	}
	p := ref.Path
	if !filepath.IsAbs(p) && base != "" {
		p = filepath.Join(base, p)
	}
	desc, err := LoadFile(p)
	if err != nil {
		return config.Study{}, err
	}
	if desc.StudyID == "" {
		desc.StudyID = ref.Name
	}
	return desc, nil
}

// ResolveAll resolves refs in order. An empty list selects every embedded
// descriptor.
func ResolveAll(refs []config.StudyRef, base string) ([]config.Study, error) {
	if len(refs) == 0 {
		names, err := EmbeddedNames()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			refs = append(refs, config.StudyRef{Name: n})
		}
	}
	out := make([]config.Study, 0, len(refs))
	for _, r := range refs {
		desc, err := Resolve(r, base)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}
