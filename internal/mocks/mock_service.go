package mocks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chartsync/internal/crossfilter"
	"chartsync/internal/models"
)

// MockService loads canned dashboard data for local development and tests
type MockService struct {
	mocksDir string
}

// NewMockService creates a new mock service reading from mocksDir/data
func NewMockService(mocksDir string) *MockService {
	return &MockService{
		mocksDir: filepath.Join(mocksDir, "data"),
	}
}

// LoadMockData loads the mock layout and records
func (m *MockService) LoadMockData() (*models.Layout, []crossfilter.Record, error) {
	layoutData, err := os.ReadFile(filepath.Join(m.mocksDir, "layout.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read mock layout: %w", err)
	}
	layout, err := models.ParseLayout(layoutData)
	if err != nil {
		return nil, nil, err
	}

	records, err := m.LoadRecords()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load mock records: %w", err)
	}
	return layout, records, nil
}

// LoadRecords loads the mock records
func (m *MockService) LoadRecords() ([]crossfilter.Record, error) {
	var records []crossfilter.Record
	if err := m.loadTypedJSONFile("records.json", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// loadTypedJSONFile loads a JSON file and unmarshals it into target
func (m *MockService) loadTypedJSONFile(filename string, target interface{}) error {
	content, err := os.ReadFile(filepath.Join(m.mocksDir, filename))
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := json.Unmarshal(content, target); err != nil {
		return fmt.Errorf("failed to unmarshal file %s: %w", filename, err)
	}
	return nil
}
