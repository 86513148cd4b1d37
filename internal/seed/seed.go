// Package seed preloads employee records from a YAML file. Employees are
// created and edited by another service; a seed file lets a standalone
// deployment have employees to assign.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/store"
)

// File is the layout of a seed file.
//
//	employees:
//	  - first_name: Ann
//	    last_name: Smith
//	    owner: auth0|alice
type File struct {
	Employees []Employee `yaml:"employees" validate:"dive"`
}

// Employee is a single seeded employee. ID is optional and generated when empty.
type Employee struct {
	ID        string `yaml:"id"`
	FirstName string `yaml:"first_name" validate:"required"`
	LastName  string `yaml:"last_name" validate:"required"`
	Owner     string `yaml:"owner" validate:"required"`
}

var validate = validator.New()

// Load parses and validates a seed file.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	return &f, nil
}

// LoadFile reads the seed file at path.
func LoadFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Apply writes every employee in f to employees. baseURL is the public address
// of the API; employee self links are built as <baseURL>/employees/<id>.
func Apply(ctx context.Context, employees store.EmployeeStore, f *File, baseURL string) (int, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")

	for i, e := range f.Employees {
		id := e.ID
		if id == "" {
			var err error
			if id, err = store.NewID(); err != nil {
				return i, err
			}
		}

		employee := &models.Employee{
			ID:        id,
			Self:      baseURL + "/employees/" + id,
			FirstName: e.FirstName,
			LastName:  e.LastName,
			Owner:     e.Owner,
		}

		if err := employees.Create(ctx, employee); err != nil {
			return i, fmt.Errorf("failed to seed employee %s: %w", id, err)
		}

		log.Debug().Str("employee_id", id).Str("owner", e.Owner).Msg("Seeded employee")
	}

	return len(f.Employees), nil
}
