package market

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
)

// Satu-satunya transisi yang sah: available -> sold, dan hanya lewat checkout.
func CanTransition(from, to Status) bool {
	return from == StatusAvailable && to == StatusSold
}

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusSold
}
