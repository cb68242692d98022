package log

// Transporter delivers entries to a destination (stdout, console, file).
type Transporter interface {
	Name() string
	Write(entry Entry) error
	Close() error
}
