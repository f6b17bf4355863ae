package repository

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed fixtures/*.json
var embedded embed.FS

// Source is a flat directory of partner fixtures.
type Source struct {
	Name string
	FS   fs.FS
	// Optional sources may be absent; a missing directory is not an error.
	Optional bool
}

// EmbeddedSource returns the fixtures compiled into the binary.
func EmbeddedSource() Source {
	sub, err := fs.Sub(embedded, "fixtures")
	if err != nil {
		panic(err)
	}
	return Source{Name: "embedded", FS: sub}
}

// DirSource reads fixtures from a directory on disk.
func DirSource(name, dir string) Source {
	return Source{Name: name, FS: os.DirFS(dir), Optional: true}
}

// document is one fixture file read from a source.
type document struct {
	name string
	data []byte
}

func (d document) ext() string {
	return strings.ToLower(path.Ext(d.name))
}

func supported(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return !strings.HasPrefix(path.Base(name), ".")
	}
	return false
}

// read returns the source's fixture documents sorted by file name.
func (s Source) read() ([]document, error) {
	entries, err := fs.ReadDir(s.FS, ".")
	if err != nil {
		if s.Optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var docs []document
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(s.FS, e.Name())
		if err != nil {
			return docs, err
		}
		docs = append(docs, document{name: e.Name(), data: data})
	}
	return docs, nil
}
