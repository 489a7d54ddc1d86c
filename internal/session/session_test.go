// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperflow/pkg/types"
)

func TestNewAndOpen(t *testing.T) {
	cfg := types.SessionConfig{SessionsDir: t.TempDir()}

	s, err := New(cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.DirExists(t, s.SpecsDir())

	reopened, err := Open(cfg, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Dir, reopened.Dir)

	_, err = Open(cfg, "no-such-session")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	cfg := types.SessionConfig{SessionsDir: t.TempDir()}

	ids, err := List(cfg)
	require.NoError(t, err)
	assert.Empty(t, ids)

	s1, err := New(cfg)
	require.NoError(t, err)
	s2, err := New(cfg)
	require.NoError(t, err)

	ids, err = List(cfg)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, s1.ID)
	assert.Contains(t, ids, s2.ID)

	// A missing sessions dir is not an error.
	ids, err = List(types.SessionConfig{SessionsDir: filepath.Join(t.TempDir(), "absent")})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSaveLoadJSON(t *testing.T) {
	cfg := types.SessionConfig{SessionsDir: t.TempDir()}
	s, err := New(cfg)
	require.NoError(t, err)

	content := types.PaperContent{
		Info: types.PaperInfo{Title: "Attention Is All You Need", Year: 2017},
		Algorithms: []types.PaperAlgorithm{
			{ID: "algo-1", Name: "ScaledDotProductAttention"},
		},
	}
	require.NoError(t, s.SaveJSON(s.PaperContentPath(), &content))

	var loaded types.PaperContent
	require.NoError(t, s.LoadJSON(s.PaperContentPath(), &loaded))
	assert.Equal(t, content, loaded)
}

func TestLoadJSON_MalformedArtifact(t *testing.T) {
	cfg := types.SessionConfig{SessionsDir: t.TempDir()}
	s, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.KnowledgeModelPath(), []byte("{not json"), 0o644))

	var graph types.PaperKnowledgeGraph
	err = s.LoadJSON(s.KnowledgeModelPath(), &graph)

	var serr *SerializationError
	require.True(t, errors.As(err, &serr), "want SerializationError, got %v", err)
	assert.Equal(t, s.KnowledgeModelPath(), serr.Path)
}

func TestSpecFiles(t *testing.T) {
	cfg := types.SessionConfig{SessionsDir: t.TempDir()}
	s, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.SpecPath("spec-b"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(s.SpecPath("spec-a"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.SpecsDir(), "notes.txt"), []byte("x"), 0o644))

	files, err := s.SpecFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, s.SpecPath("spec-a"), files[0])
	assert.Equal(t, s.SpecPath("spec-b"), files[1])
}
