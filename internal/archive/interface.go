package archive

// Archive stores raw run snapshots (JSON per run date and bucket) for later
// inspection. It is optional: a nil Archive means snapshots are skipped.
type Archive interface {
	Store(name string, data []byte) error
	Retrieve(name string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(name string) error
}
