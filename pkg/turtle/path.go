package turtle

// RotateKind distinguishes the rotation commands.
type RotateKind int

const (
	RotateHorizontal RotateKind = iota // yaw around the up axis
	RotateVertical                     // pitch around the right axis
	RotateRoll                         // spin around the heading
	RotateSetHeading                   // absolute yaw angle in the XY plane
)

func (k RotateKind) String() string {
	switch k {
	case RotateHorizontal:
		return "horizontal"
	case RotateVertical:
		return "vertical"
	case RotateRoll:
		return "roll"
	case RotateSetHeading:
		return "set-heading"
	default:
		return "unknown"
	}
}

// Command is one step of a path: a forward move or a rotation.
type Command interface {
	pathCommand() // marker method restricting implementations to this package
}

// Forward moves the turtle Dist units along its heading.
type Forward struct {
	Dist float64
}

func (Forward) pathCommand() {}

// Rotate turns the turtle frame. Angle is in degrees.
type Rotate struct {
	Kind  RotateKind
	Angle float64
}

func (Rotate) pathCommand() {}

// ChangesHeading reports whether the rotation can alter the heading.
// Pure roll never does.
func (r Rotate) ChangesHeading() bool {
	return r.Kind != RotateRoll
}

// Path is an ordered command sequence.
type Path []Command

// TotalDist sums the forward distances of the path.
func (p Path) TotalDist() float64 {
	var total float64
	for _, c := range p {
		if f, ok := c.(Forward); ok {
			total += f.Dist
		}
	}
	return total
}

// Run applies every command in sequence and returns the final pose.
func (p Path) Run(start Pose) Pose {
	pose := start
	for _, c := range p {
		pose = pose.Apply(c)
	}
	return pose
}
