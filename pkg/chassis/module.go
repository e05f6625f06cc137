package chassis

// Module identifies one swerve module by its corner of the chassis.
type Module int

const (
	FrontLeft Module = iota
	FrontRight
	BackLeft
	BackRight

	NumModules = 4
)

var moduleNames = [NumModules]string{"FL", "FR", "BL", "BR"}

func (m Module) String() string {
	if m < 0 || int(m) >= NumModules {
		return "Module(?)"
	}
	return moduleNames[m]
}

// PerModule holds one value per swerve module, indexed by Module.
type PerModule[T any] [NumModules]T

func Uniform[T any](v T) (p PerModule[T]) {
	for m := range p {
		p[m] = v
	}
	return
}

// Map applies f to each value.
func Map[T, U any](p PerModule[T], f func(Module, T) U) (out PerModule[U]) {
	for m, v := range p {
		out[m] = f(Module(m), v)
	}
	return
}
