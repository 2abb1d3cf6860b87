package device

// Copier moves bytes across the session boundary. The original character
// device crosses the kernel/user boundary with copy_to_user/copy_from_user,
// either of which can fail when the far side is inaccessible; gateways that
// bridge to another process or address space can substitute a Copier with
// the same failure mode. The default is a plain in-process memory copy.
type Copier interface {
	// Copy copies len(src) bytes from src to dst and reports how many
	// bytes were transferred. dst is always at least len(src) long.
	Copy(dst, src []byte) (int, error)
}

// memCopier is the default in-process Copier. It cannot fail.
type memCopier struct{}

func (memCopier) Copy(dst, src []byte) (int, error) {
	return copy(dst, src), nil
}
