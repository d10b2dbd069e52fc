package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// outputSet stages output files as temporaries next to their destination
// and renames them into place only in commit.
type outputSet struct {
	files []*stagedFile
}

type stagedFile struct {
	tmp   *os.File
	buf   *bufio.Writer
	final string

	// backup holds the file that was at final before commit moved it aside.
	backup string
	placed bool
}

// create stages a new file for final and returns a writer for its contents.
func (s *outputSet) create(final string) (io.Writer, error) {
	dir, base := filepath.Split(final)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, err
	}
	f := &stagedFile{tmp: tmp, buf: bufio.NewWriter(tmp), final: final}
	s.files = append(s.files, f)
	return f.buf, nil
}

// commit flushes every staged file and moves it to its destination.
// Either every file is placed or, on error, every destination is left as it
// was before commit; abort then removes the temporaries.
func (s *outputSet) commit() error {
	for _, f := range s.files {
		if err := f.buf.Flush(); err != nil {
			return fmt.Errorf("write %s: %w", f.final, err)
		}
		if err := f.tmp.Sync(); err != nil {
			return fmt.Errorf("write %s: %w", f.final, err)
		}
		if err := f.tmp.Close(); err != nil {
			return fmt.Errorf("write %s: %w", f.final, err)
		}
		// CreateTemp uses mode 0600; outputs get the usual file mode.
		if err := os.Chmod(f.tmp.Name(), 0o644); err != nil {
			return err
		}
	}
	for _, f := range s.files {
		if err := f.place(); err != nil {
			s.rollback()
			return err
		}
	}
	for _, f := range s.files {
		if f.backup != "" {
			_ = os.Remove(f.backup)
		}
	}
	s.files = nil
	return nil
}

// place moves an existing file at the destination aside and renames the
// temporary into its place. Directories are never moved.
func (f *stagedFile) place() error {
	if info, err := os.Lstat(f.final); err == nil && !info.IsDir() {
		backup := f.tmp.Name() + ".bak"
		if err := os.Rename(f.final, backup); err != nil {
			return err
		}
		f.backup = backup
	}
	if err := os.Rename(f.tmp.Name(), f.final); err != nil {
		return err
	}
	f.placed = true
	return nil
}

// rollback undoes the placements of a failed commit, newest first, and
// puts the replaced files back.
func (s *outputSet) rollback() {
	for i := len(s.files) - 1; i >= 0; i-- {
		f := s.files[i]
		if f.placed {
			_ = os.Remove(f.final)
			f.placed = false
		}
		if f.backup != "" {
			_ = os.Rename(f.backup, f.final)
			f.backup = ""
		}
	}
}

// abort removes every temporary that was not committed. It is safe to call
// after commit.
func (s *outputSet) abort() {
	for _, f := range s.files {
		_ = f.tmp.Close()
		_ = os.Remove(f.tmp.Name())
	}
	s.files = nil
}
