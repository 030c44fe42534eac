package businessprofile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EndpointsFile is the optional YAML override of the provider base URLs.
//
//	endpoints:
//	  account_management: http://localhost:9090
//	  reviews: ${REVIEWS_SANDBOX_URL}
type EndpointsFile struct {
	Endpoints Endpoints `yaml:"endpoints"`
}

// Loader reads an EndpointsFile from disk.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load parses the file, expanding ${VAR} references from the environment,
// and returns the endpoints completed with defaults.
func (l *Loader) Load() (Endpoints, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to read endpoints file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var file EndpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Endpoints{}, fmt.Errorf("failed to parse endpoints yaml: %w", err)
	}

	return file.Endpoints.WithDefaults(), nil
}
