package probe

import "errors"

// Probe and wake failures that callers may want to tell apart. All of them
// are wrapped with address context, so match with errors.Is.
var (
	// ErrNotWritable means the socket never became ready to send.
	ErrNotWritable = errors.New("socket not ready to write")
	// ErrShortWrite means fewer bytes than the full packet were sent.
	ErrShortWrite = errors.New("short write")
	// ErrNotReadable means no reply arrived before the deadline.
	ErrNotReadable = errors.New("socket not ready to read")
	// ErrShortRead means the reply was not a full echo packet.
	ErrShortRead = errors.New("short read")
	// ErrUnexpectedReply means the reply was not an echo reply for the
	// probed address family.
	ErrUnexpectedReply = errors.New("unexpected reply")
)
