package citygml

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cityforge/cityforge/pkg/lod"
	"github.com/cityforge/cityforge/pkg/params"
	"github.com/cityforge/cityforge/pkg/solid"
)

// Sink fans one building's models out to one file per LOD point.
type Sink struct {
	points  []lod.Point
	writers map[string]*Writer
	files   []*os.File
	bufs    []*bufio.Writer
	written int
}

// OpenSink creates dir if needed and opens one document per point.
func OpenSink(dir string, points []lod.Point, opts Options) (*Sink, error) {
	if len(points) == 0 {
		points = lod.Points
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	s := &Sink{points: points, writers: make(map[string]*Writer, len(points))}
	for _, pt := range points {
		path := filepath.Join(dir, pt.FileTag()+".gml")
		f, err := os.Create(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		bw := bufio.NewWriterSize(f, 1<<16)
		w, err := NewWriter(bw, pt, opts)
		if err != nil {
			f.Close()
			s.Close()
			return nil, fmt.Errorf("write header of %s: %w", path, err)
		}
		s.files = append(s.files, f)
		s.bufs = append(s.bufs, bw)
		s.writers[pt.Name] = w
	}
	return s, nil
}

// Write emits the building to every open document and flushes, so the
// models can be released immediately after the call.
func (s *Sink) Write(b *params.Building, models map[string]*solid.Model) error {
	for _, pt := range s.points {
		m, ok := models[pt.Name]
		if !ok {
			return fmt.Errorf("building %s: no model for point %s", b.ID, pt.Name)
		}
		if err := s.writers[pt.Name].WriteBuilding(b, m); err != nil {
			return fmt.Errorf("write building %s at %s: %w", b.ID, pt.Name, err)
		}
	}
	for _, bw := range s.bufs {
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	s.written++
	return nil
}

// Written reports the number of buildings emitted so far.
func (s *Sink) Written() int {
	return s.written
}

// Close finishes every document. Safe to call after a partial open.
func (s *Sink) Close() error {
	var first error
	for _, pt := range s.points {
		if w, ok := s.writers[pt.Name]; ok {
			if err := w.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	for _, bw := range s.bufs {
		if err := bw.Flush(); err != nil && first == nil {
			first = err
		}
	}
	for _, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
