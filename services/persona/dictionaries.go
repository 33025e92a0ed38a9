package persona

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
)

//go:embed biases/*.json
var embeddedBiases embed.FS

const (
	personalityFile   = "personality_type.json"
	cefrFile          = "cefr_type.json"
	recallFile        = "recall_level_type.json"
	dazedFile         = "dazed_level_type.json"
	sentenceLimitFile = "sentence_length_limit.json"
)

// Dictionaries holds the raw bias templates for each persona axis. Every
// template starts with a one-line directive; the detailed body follows as
// lines introduced by "\n\t".
type Dictionaries struct {
	Personality   map[string]string
	CEFR          map[string]string
	Recall        map[string]string
	Dazed         map[string]string
	SentenceLimit map[string]string
}

// LoadDictionaries reads the five bias files from the root of fsys.
func LoadDictionaries(fsys fs.FS) (*Dictionaries, error) {
	d := &Dictionaries{}
	targets := []struct {
		file string
		dst  *map[string]string
	}{
		{personalityFile, &d.Personality},
		{cefrFile, &d.CEFR},
		{recallFile, &d.Recall},
		{dazedFile, &d.Dazed},
		{sentenceLimitFile, &d.SentenceLimit},
	}

	for _, t := range targets {
		data, err := fs.ReadFile(fsys, t.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read bias dictionary %s: %w", t.file, err)
		}
		if err := json.Unmarshal(data, t.dst); err != nil {
			return nil, fmt.Errorf("failed to parse bias dictionary %s: %w", t.file, err)
		}
	}
	return d, nil
}

// LoadDir reads the bias dictionaries from a directory on disk.
func LoadDir(dir string) (*Dictionaries, error) {
	log.Printf("[INFO] Loading bias dictionaries from %s", dir)
	return LoadDictionaries(os.DirFS(dir))
}

// DefaultDictionaries returns the bias dictionaries compiled into the binary.
func DefaultDictionaries() *Dictionaries {
	sub, err := fs.Sub(embeddedBiases, "biases")
	if err != nil {
		panic(fmt.Sprintf("embedded bias dictionaries missing: %v", err))
	}
	d, err := LoadDictionaries(sub)
	if err != nil {
		panic(fmt.Sprintf("embedded bias dictionaries invalid: %v", err))
	}
	return d
}
