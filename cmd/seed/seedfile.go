package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"secureview/internal/insight"
	"secureview/internal/model"
)

// SeedFile is the YAML document loaded by the seed command.
type SeedFile struct {
	Users    []SeedUser                 `yaml:"users"`
	Tasks    []model.Task               `yaml:"tasks"`
	Insights []model.DepartmentInsights `yaml:"insights"`
}

// SeedUser carries a plaintext password that is hashed before storage.
type SeedUser struct {
	ID         string     `yaml:"id"`
	Email      string     `yaml:"email"`
	Password   string     `yaml:"password"`
	Role       model.Role `yaml:"role"`
	Department string     `yaml:"department"`
}

// ReadSeedFile parses and validates a seed file from disk.
func ReadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeSeed(f)
}

// DecodeSeed parses a seed document. Unknown fields are rejected so typos surface early.
func DecodeSeed(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sf SeedFile
	if err := dec.Decode(&sf); err != nil {
		if errors.Is(err, io.EOF) {
			return &sf, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := sf.Validate(); err != nil {
		return nil, err
	}
	return &sf, nil
}

// Validate checks the document and returns every problem found.
func (sf *SeedFile) Validate() error {
	var errs []error

	emails := make(map[string]bool)
	for i, u := range sf.Users {
		where := fmt.Sprintf("users[%d]", i)
		if u.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		}
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			errs = append(errs, fmt.Errorf("%s: email is required", where))
		} else if emails[email] {
			errs = append(errs, fmt.Errorf("%s: duplicate email %q", where, email))
		}
		emails[email] = true
		if u.Password == "" {
			errs = append(errs, fmt.Errorf("%s: password is required", where))
		}
		if !u.Role.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown role %q", where, u.Role))
		}
		if u.Department == "" {
			errs = append(errs, fmt.Errorf("%s: department is required", where))
		}
	}

	taskIDs := make(map[string]bool)
	for i, t := range sf.Tasks {
		where := fmt.Sprintf("tasks[%d]", i)
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", where))
		} else if taskIDs[t.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate task id %q", where, t.ID))
		}
		taskIDs[t.ID] = true
		if t.Department == "" {
			errs = append(errs, fmt.Errorf("%s: department is required", where))
		}
		if len(t.Questions) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one question is required", where))
		}
		qids := make(map[string]bool)
		for j, q := range t.Questions {
			if q.ID == "" || strings.TrimSpace(q.Text) == "" {
				errs = append(errs, fmt.Errorf("%s.questions[%d]: id and text are required", where, j))
				continue
			}
			if qids[q.ID] {
				errs = append(errs, fmt.Errorf("%s.questions[%d]: duplicate question id %q", where, j, q.ID))
			}
			qids[q.ID] = true
		}
	}

	for i, d := range sf.Insights {
		if d.Department == "" {
			errs = append(errs, fmt.Errorf("insights[%d]: department is required", i))
		}
		if d.NumEmployees < 0 {
			errs = append(errs, fmt.Errorf("insights[%d]: numEmployees must not be negative", i))
		}
		names := make([]string, 0, len(d.Dimensions))
		for name := range d.Dimensions {
			names = append(names, name)
		}
		sort.Strings(names)
		seen := make(map[insight.Dimension]string)
		for _, name := range names {
			dim, ok := insight.ParseDimension(name)
			if !ok {
				continue
			}
			if first, dup := seen[dim]; dup {
				errs = append(errs, fmt.Errorf("insights[%d]: %q and %q name the same dimension", i, first, name))
				continue
			}
			seen[dim] = name
		}
	}

	return errors.Join(errs...)
}

// UnknownDimensions lists dimension names the classifier will skip, per department.
func (sf *SeedFile) UnknownDimensions() map[string][]string {
	out := make(map[string][]string)
	for _, d := range sf.Insights {
		for name := range d.Dimensions {
			if _, ok := insight.ParseDimension(name); !ok {
				out[d.Department] = append(out[d.Department], name)
			}
		}
	}
	return out
}
