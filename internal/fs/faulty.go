package fs

import "os"

// Faulty wraps an [FS] and returns scripted errors for selected
// operations. Operations without a scripted error pass through to the
// underlying filesystem.
//
// Keys in Errs are "op path", e.g. "remove /tmp/scratch" or
// "readdir /tmp/scratch". Ops: readfile, writefile, readdir, mkdir,
// mkdirall, stat, remove.
type Faulty struct {
	FS   FS
	Errs map[string]error
}

func (f *Faulty) fault(op, path string) error {
	if f.Errs == nil {
		return nil
	}

	return f.Errs[op+" "+path]
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.fault("readfile", path); err != nil {
		return nil, err
	}

	return f.FS.ReadFile(path)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := f.fault("writefile", path); err != nil {
		return err
	}

	return f.FS.WriteFileAtomic(path, data, perm)
}

func (f *Faulty) ReadDir(path string) ([]os.DirEntry, error) {
	if err := f.fault("readdir", path); err != nil {
		return nil, err
	}

	return f.FS.ReadDir(path)
}

func (f *Faulty) Mkdir(path string, perm os.FileMode) error {
	if err := f.fault("mkdir", path); err != nil {
		return err
	}

	return f.FS.Mkdir(path, perm)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.fault("mkdirall", path); err != nil {
		return err
	}

	return f.FS.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.fault("stat", path); err != nil {
		return nil, err
	}

	return f.FS.Stat(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.fault("remove", path); err != nil {
		return err
	}

	return f.FS.Remove(path)
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
