package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/handiism/tunetracer/internal/model"
)

// TrackList is the on-disk form of a curated track set. YAML, TOML and JSON
// files are accepted; the format follows the file extension.
//
//	name: 80s classics
//	tracks:
//	  - id: take-on-me
//	    title: Take On Me
//	    artist: a-ha
//	  - id: africa
//	    title: Africa
//	    artist: TOTO
//	    direct_audio_url: https://example.com/africa.m4a
type TrackList struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Tracks []model.Track `json:"tracks" yaml:"tracks" toml:"tracks"`
}

// File reads candidates from a track list file.
type File struct {
	Path string
}

func (f *File) Name() string {
	return "file " + f.Path
}

func (f *File) FetchCandidates(ctx context.Context) ([]model.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}

	var list TrackList
	if err := unmarshalTrackList(f.Path, data, &list); err != nil {
		return nil, fmt.Errorf("parse track list %s: %w", f.Path, err)
	}

	return list.Tracks, nil
}

// WriteTrackList saves tracks as a track list, e.g. to curate a set from a
// fetched playlist. Paths ending in .toml or .json select that format,
// anything else is written as YAML.
func WriteTrackList(path, name string, tracks []model.Track) error {
	list := TrackList{Name: name, Tracks: tracks}

	var (
		data []byte
		err  error
	)
	switch listFormat(path) {
	case ".toml":
		data, err = toml.Marshal(list)
	case ".json":
		data, err = json.MarshalIndent(list, "", "  ")
	default:
		data, err = yaml.Marshal(list)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func unmarshalTrackList(path string, data []byte, list *TrackList) error {
	switch listFormat(path) {
	case ".toml":
		return toml.Unmarshal(data, list)
	case ".json":
		return json.Unmarshal(data, list)
	default:
		return yaml.Unmarshal(data, list)
	}
}

func listFormat(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
