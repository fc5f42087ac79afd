// Package directory provides read-only employee lookups backed by the
// HR-exported directory CSV.
package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmployeeNotFound is returned by Lookup implementations when no employee
// matches the requested ID.
var ErrEmployeeNotFound = errors.New("directory: employee not found")

// Employee is one directory record. Immutable reference data; the dialog
// engine only ever reads it.
type Employee struct {
	ID          string
	FirstName   string
	LastName    string
	DisplayName string
	Phone       string
	Email       string
}

// Lookup resolves employee IDs to directory records. Implementations must be
// safe for unsynchronized concurrent reads.
type Lookup interface {
	// ByID returns the employee with the exact ID (case as stored), or
	// ErrEmployeeNotFound.
	ByID(id string) (*Employee, error)
}

// csvHeader is the expected column order of the directory export.
var csvHeader = []string{"ID", "FirstName", "LastName", "DisplayName", "TelephoneNumber", "EmailAddress"}

// CSVDirectory is an in-memory Lookup loaded once at startup from a CSV file.
// The backing map is never mutated after load, so concurrent reads need no
// synchronization.
type CSVDirectory struct {
	byID map[string]*Employee
}

// LoadCSV reads the employee directory from path.
func LoadCSV(path string) (*CSVDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("directory: open %s: %w", path, err)
	}
	defer f.Close()
	d, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("directory: %s: %w", path, err)
	}
	return d, nil
}

// ParseCSV reads directory records from r. The first row must be the header.
func ParseCSV(r io.Reader) (*CSVDirectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header column %d: got %q, want %q", i, header[i], want)
		}
	}

	byID := make(map[string]*Employee)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		emp := &Employee{
			ID:          row[0],
			FirstName:   row[1],
			LastName:    row[2],
			DisplayName: row[3],
			Phone:       row[4],
			Email:       row[5],
		}
		if emp.ID == "" {
			return nil, fmt.Errorf("line %d: empty employee ID", line)
		}
		if _, dup := byID[emp.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate employee ID %q", line, emp.ID)
		}
		byID[emp.ID] = emp
	}
	return &CSVDirectory{byID: byID}, nil
}

// ByID implements Lookup.
func (d *CSVDirectory) ByID(id string) (*Employee, error) {
	emp, ok := d.byID[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return emp, nil
}

// Len returns the number of loaded employees.
func (d *CSVDirectory) Len() int {
	return len(d.byID)
}

// All returns every employee, in no particular order.
func (d *CSVDirectory) All() []*Employee {
	emps := make([]*Employee, 0, len(d.byID))
	for _, e := range d.byID {
		emps = append(emps, e)
	}
	return emps
}
