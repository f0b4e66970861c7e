package library

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Catalogs []seedCatalog `yaml:"catalogs"`
}

type seedCatalog struct {
	Name    string       `yaml:"name"`
	Books   []seedBook   `yaml:"books"`
	Members []seedMember `yaml:"members"`
}

type seedBook struct {
	ID     int64  `yaml:"id"`
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

type seedMember struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// DefaultCatalogs returns the built-in demo catalogs.
func DefaultCatalogs() []*Catalog {
	catalogs, err := parseSeed(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("embedded seed: %v", err))
	}
	return catalogs
}

// LoadSeedFile reads catalogs from a YAML seed file.
func LoadSeedFile(path string) ([]*Catalog, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSeed(f)
}

// LoadSeed reads catalogs from YAML of the form
//
//	catalogs:
//	  - name: Central Library
//	    books:   [{id: 101, title: ..., author: ...}]
//	    members: [{id: 1, name: Alice, role: student}]
func LoadSeed(r io.Reader) ([]*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseSeed(b)
}

func parseSeed(b []byte) ([]*Catalog, error) {
	var dto seedFile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if len(dto.Catalogs) == 0 {
		return nil, fmt.Errorf("seed has no catalogs: %w", ErrInvalidInput)
	}

	catalogs := make([]*Catalog, 0, len(dto.Catalogs))
	for _, sc := range dto.Catalogs {
		c := NewCatalog(sc.Name)
		for _, sb := range sc.Books {
			c.AddBook(NewBook(sb.Title, sb.Author, sb.ID))
		}
		for _, sm := range sc.Members {
			role, err := ParseRole(sm.Role)
			if err != nil {
				return nil, fmt.Errorf("catalog %q member %d: %w", sc.Name, sm.ID, err)
			}
			c.AddMember(NewMember(sm.Name, sm.ID, role))
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, nil
}
