package hotreload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeLoader treats the image bytes as the manifest itself.
type fakeLoader struct {
	contexts []*fakeContext
	loadErr  error
	leak     bool
}

func (l *fakeLoader) Load(_ context.Context, name string, image []byte) (Context, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	c := &fakeContext{name: name, manifest: image, leak: l.leak}
	l.contexts = append(l.contexts, c)
	return c, nil
}

// fakeContext refuses to report release when leak is set.
type fakeContext struct {
	name        string
	manifest    []byte
	leak        bool
	unloadCalls int
	probes      int
}

func (c *fakeContext) Components(context.Context) ([]byte, error) {
	return c.manifest, nil
}

func (c *fakeContext) Unload(context.Context) error {
	c.unloadCalls++
	return nil
}

func (c *fakeContext) Released() bool {
	c.probes++
	return c.unloadCalls > 0 && !c.leak
}

type recordingSink struct {
	events []Event
}

func (s *recordingSink) EmitEvent(e Event) {
	s.events = append(s.events, e)
}

func (s *recordingSink) kinds() []EventKind {
	kinds := make([]EventKind, len(s.events))
	for i, e := range s.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func descriptor(name string, fields ...Field) Descriptor {
	return Descriptor{ID: uuid.New(), Name: name, Fields: fields}
}

// writeManifest writes a raw manifest for use with fakeLoader.
func writeManifest(t *testing.T, dir, name string, descs ...Descriptor) string {
	t.Helper()
	data, err := EncodeManifest(descs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// writeImage writes a loadable WebAssembly unit.
func writeImage(t *testing.T, dir, name string, descs ...Descriptor) string {
	t.Helper()
	data, err := EncodeImage(descs)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
