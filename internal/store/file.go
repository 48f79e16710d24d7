package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// File grava um arquivo JSON por chave dentro de Dir
type File struct {
	Dir string
}

// NewFile garante que o diretório existe
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &File{Dir: dir}, nil
}

// Path retorna o caminho do arquivo de uma chave ("aposta-manager:v1" -> aposta-manager_v1.json)
func (f *File) Path(key string) string {
	return filepath.Join(f.Dir, unsafeChars.ReplaceAllString(key, "_")+".json")
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	b, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(b), true, nil
}

// Set escreve num arquivo temporário e renomeia, para nunca deixar um blob pela metade
func (f *File) Set(_ context.Context, key, value string) error {
	path := f.Path(key)
	tmp, err := os.CreateTemp(f.Dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
