// Package config loads the upstream and model catalogue settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/a-h/chatrelay/models"
	"github.com/a-h/chatrelay/upstream"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Local  Local                `yaml:"local"`
	Cloud  Cloud                `yaml:"cloud"`
	Models []models.ModelOption `yaml:"models"`
}

type Local struct {
	URL string `yaml:"url"`
}

type Cloud struct {
	// Endpoint overrides the URL derived from Project and Region.
	Endpoint  string             `yaml:"endpoint"`
	Project   string             `yaml:"project"`
	Region    string             `yaml:"region"`
	DeltaPath upstream.DeltaPath `yaml:"deltaPath"`
	Sampling  upstream.Sampling  `yaml:"sampling"`
}

// URL returns the completions endpoint, or "" if the cloud upstream is not configured.
func (c Cloud) URL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Project == "" {
		return ""
	}
	return upstream.VertexEndpoint(c.Project, c.Region)
}

func Default() Config {
	return Config{
		Local: Local{
			URL: "http://localhost:11434",
		},
		Cloud: Cloud{
			Region:    "us-central1",
			DeltaPath: upstream.DeltaPathChoices,
			Sampling:  upstream.DefaultSampling,
		},
		Models: []models.ModelOption{
			{
				ID:          "ollama-llama",
				Name:        "Llama 3.2 (3b)",
				Provider:    models.ProviderLocal,
				ModelID:     "llama3.2",
				Description: "Powered by Ollama",
			},
			{
				ID:          "vertex-llama",
				Name:        "Llama 3.2 (90b)",
				Provider:    models.ProviderCloud,
				ModelID:     "meta/llama-3.2-90b-vision-instruct-maas",
				Description: "Powered by Google Cloud Vertex AI",
			},
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns the defaults.
func Load(path string) (c Config, err error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("config: failed to open %q: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes YAML over the defaults and validates the result.
func Read(r io.Reader) (c Config, err error) {
	c = Default()
	if err = yaml.NewDecoder(r).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("config: failed to decode: %w", err)
	}
	return c, c.normalize()
}

func (c *Config) normalize() error {
	if _, err := upstream.ExtractorFor(c.Cloud.DeltaPath); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ids := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if m.ID == "" || m.ModelID == "" {
			return fmt.Errorf("config: model %d: id and modelId are required", i)
		}
		if _, ok := ids[m.ID]; ok {
			return fmt.Errorf("config: duplicate model id %q", m.ID)
		}
		ids[m.ID] = struct{}{}
		p, err := models.ParseProvider(string(m.Provider))
		if err != nil {
			return fmt.Errorf("config: model %q: %w", m.ID, err)
		}
		c.Models[i].Provider = p
		if c.Models[i].Name == "" {
			c.Models[i].Name = m.ModelID
		}
	}
	return nil
}
