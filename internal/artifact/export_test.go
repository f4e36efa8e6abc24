package artifact

// WithRename replaces the rename step of w.
func WithRename(w *Writer, rename func(oldpath, newpath string) error) *Writer {
	w.rename = rename
	return w
}
