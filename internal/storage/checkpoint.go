package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/azyu/publishgpt/pkg/types"
)

// ErrCheckpointNotFound is returned when a checkpoint file does not exist.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// Checkpoints reads and writes the JSON files that carry workflow state
// between invocations. All files live directly in one working directory.
type Checkpoints struct {
	dir string
}

// NewCheckpoints returns a store rooted at dir.
func NewCheckpoints(dir string) *Checkpoints {
	return &Checkpoints{dir: dir}
}

// Dir returns the working directory.
func (c *Checkpoints) Dir() string {
	return c.dir
}

// Path returns the absolute-or-relative path of a file in the working directory.
func (c *Checkpoints) Path(name string) string {
	return filepath.Join(c.dir, name)
}

// Exists reports whether a file exists in the working directory.
func (c *Checkpoints) Exists(name string) bool {
	_, err := os.Stat(c.Path(name))
	return err == nil
}

// LoadModelConfig reads model_config.json.
func (c *Checkpoints) LoadModelConfig() (*types.ModelConfig, error) {
	var cfg types.ModelConfig
	if err := c.read(types.ModelConfigFile, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveModelConfig writes model_config.json.
func (c *Checkpoints) SaveModelConfig(cfg *types.ModelConfig) error {
	return WriteJSON(c.Path(types.ModelConfigFile), cfg)
}

// LoadBookConfig reads book_config.json.
func (c *Checkpoints) LoadBookConfig() (*types.BookConfig, error) {
	var cfg types.BookConfig
	if err := c.read(types.BookConfigFile, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveBookConfig writes book_config.json.
func (c *Checkpoints) SaveBookConfig(cfg *types.BookConfig) error {
	return WriteJSON(c.Path(types.BookConfigFile), cfg)
}

// LoadChapters reads chapters.json. A missing file yields an empty list.
func (c *Checkpoints) LoadChapters() ([]string, error) {
	chapters := []string{}
	err := c.read(types.ChaptersFile, &chapters)
	if errors.Is(err, ErrCheckpointNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []string{}
	}
	return chapters, nil
}

// SaveChapters writes chapters.json. A nil list is written as [].
func (c *Checkpoints) SaveChapters(chapters []string) error {
	if chapters == nil {
		chapters = []string{}
	}
	return WriteJSON(c.Path(types.ChaptersFile), chapters)
}

// CreateEnvFile writes a .env with an empty OPENAI_API_KEY entry unless one
// already exists. It reports whether the file was created.
func (c *Checkpoints) CreateEnvFile() (bool, error) {
	if c.Exists(types.EnvFile) {
		return false, nil
	}
	if err := AtomicWriteFile(c.Path(types.EnvFile), []byte("OPENAI_API_KEY=\n")); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", types.EnvFile, err)
	}
	return true, nil
}

func (c *Checkpoints) read(name string, v any) error {
	err := ReadJSON(c.Path(name), v)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrCheckpointNotFound, name)
	}
	return err
}
