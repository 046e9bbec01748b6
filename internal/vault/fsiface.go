package vault

import (
	"os"
)

// FS is the filesystem seam the engine writes through. It follows the
// shape of the teacher's filesystem.FS (see filesystem/crash_test.go):
// a narrow interface over os.* calls so tests can inject mock or
// fault-injecting filesystems. SyncFile and SyncDir are the two additions
// this spec needs beyond the teacher's set, since the atomic write
// pipeline (spec.md §4.3.1) requires an explicit fsync of both the file
// and its containing directory.
type FS interface {
	MkdirAll(path string, perm os.FileMode) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
	ReadDir(path string) ([]os.DirEntry, error)
	Stat(path string) (os.FileInfo, error)

	// SyncFile writes data to path, then fsyncs the file before closing it.
	SyncFile(path string, data []byte, perm os.FileMode) error

	// SyncDir fsyncs the directory at path, so that a preceding rename or
	// unlink within it is durable. Not all filesystems support this; the
	// caller treats failures as best-effort.
	SyncDir(path string) error
}

// osFS implements FS using the os package.
type osFS struct{}

func (osFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (osFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (osFS) WriteFile(path string, data []byte, perm os.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (osFS) Remove(path string) error { return os.Remove(path) }

func (osFS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (osFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (osFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }

func (osFS) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }

func (osFS) SyncFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (osFS) SyncDir(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
