package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Source yields a path to a configuration file. The rest of the program
// never depends on how the path was obtained.
type Source interface {
	ConfigPath() (string, error)
}

// FileSource is a fixed path, typically from a CLI flag.
type FileSource string

func (s FileSource) ConfigPath() (string, error) {
	if s == "" {
		return "", errors.New("empty config path")
	}
	return string(s), nil
}

// PromptSource asks interactively for a path. Used as a fallback when the
// configured file does not exist.
type PromptSource struct {
	In  io.Reader
	Out io.Writer
}

func (s PromptSource) ConfigPath() (string, error) {
	fmt.Fprint(s.Out, "Config file path: ")
	line, err := bufio.NewReader(s.In).ReadString('\n')
	path := strings.TrimSpace(line)
	if path == "" {
		if err != nil {
			return "", err
		}
		return "", errors.New("no config path entered")
	}
	return path, nil
}

// Resolve loads configuration from the first source whose path points at
// an existing file. Sources are only consulted when the previous one's
// file was missing; a file that exists but fails validation aborts
// immediately.
func Resolve(sources ...Source) (Config, error) {
	var lastErr error = ErrNotFound
	for _, s := range sources {
		path, err := s.ConfigPath()
		if err != nil {
			lastErr = err
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, ErrNotFound) {
			lastErr = err
			continue
		}
		return cfg, err
	}
	return Config{}, lastErr
}
