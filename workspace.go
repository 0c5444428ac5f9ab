package psconv

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/alnah/go-psconv/internal/fileutil"
)

// workspace holds the transient files of one job. Everything lives in a
// private directory named after the job, so concurrent jobs never share a
// path and a single removal cleans up all of it.
type workspace struct {
	dir     string
	input   string
	output  string
	cleanup func() error
}

// newWorkspace creates the job directory and resolves the input path.
// Documents with a backing file are used in place; stream-backed documents
// are first materialized inside the job directory.
func newWorkspace(parent, jobID string, doc Document, outExt string) (*workspace, error) {
	if err := fileutil.ValidateExtension(outExt); err != nil {
		return nil, err
	}

	dir, cleanup, err := fileutil.MkdirTemp(parent, "psconv-"+jobID+"-")
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		dir:     dir,
		output:  filepath.Join(dir, "output."+outExt),
		cleanup: cleanup,
	}

	if p := doc.Path(); p != "" {
		ws.input = p
		return ws, nil
	}

	if err := ws.materialize(doc); err != nil {
		if cerr := cleanup(); cerr != nil {
			err = fmt.Errorf("%w (%w: %v)", err, ErrResourceCleanup, cerr)
		}
		return nil, err
	}
	return ws, nil
}

func (w *workspace) materialize(doc Document) error {
	r, err := doc.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	w.input = filepath.Join(w.dir, "input."+doc.Kind().String())
	if _, err := fileutil.WriteFile(w.input, r); err != nil {
		return fmt.Errorf("materializing document: %w", err)
	}
	return nil
}

// copyOutput streams the engine output into sink.
func (w *workspace) copyOutput(sink io.Writer) (int64, error) {
	n, err := fileutil.CopyTo(sink, w.output)
	if err != nil {
		return n, fmt.Errorf("copying engine output: %w", err)
	}
	return n, nil
}

// remove deletes the job directory and everything in it.
func (w *workspace) remove() error {
	if err := w.cleanup(); err != nil {
		return fmt.Errorf("%w: %v", ErrResourceCleanup, err)
	}
	return nil
}
