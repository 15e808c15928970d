package schema

// CheckName names a built-in validator that can be attached to a primitive.
type CheckName string

// Named validators.
const (
	CheckMin       CheckName = "min"
	CheckMax       CheckName = "max"
	CheckMinLength CheckName = "minLength"
	CheckMaxLength CheckName = "maxLength"
	CheckPattern   CheckName = "pattern"
	CheckEmail     CheckName = "email"
	CheckURL       CheckName = "url"
	CheckUUID      CheckName = "uuid"
)

// Check is a named validator attached to a primitive node.
type Check struct {
	Name CheckName `json:"name" yaml:"name"`
	// Param is the bound for min/max/minLength/maxLength and the regular
	// expression for pattern. It is unused by email, url and uuid.
	Param any `json:"param,omitempty" yaml:"param,omitempty"`
	// Message replaces the default error message when set.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Applies reports the primitive type the check is defined for.
func (c CheckName) Applies() Primitive {
	switch c {
	case CheckMin, CheckMax:
		return TypeNumber
	case CheckMinLength, CheckMaxLength, CheckPattern, CheckEmail, CheckURL, CheckUUID:
		return TypeString
	default:
		return ""
	}
}

// Bound returns the numeric parameter of a bound check.
func (c Check) Bound() (float64, bool) {
	return ToFloat(c.Param)
}

// Pattern returns the regular expression of a pattern check.
func (c Check) Pattern() (string, bool) {
	s, ok := c.Param.(string)
	return s, ok
}

// Min attaches a lower bound to a number node.
func (n *Node) Min(v float64, message ...string) *Node {
	return n.check(CheckMin, v, message)
}

// Max attaches an upper bound to a number node.
func (n *Node) Max(v float64, message ...string) *Node {
	return n.check(CheckMax, v, message)
}

// MinLength attaches a minimum length to a string node.
func (n *Node) MinLength(v int, message ...string) *Node {
	return n.check(CheckMinLength, v, message)
}

// MaxLength attaches a maximum length to a string node.
func (n *Node) MaxLength(v int, message ...string) *Node {
	return n.check(CheckMaxLength, v, message)
}

// Pattern attaches a regular expression to a string node.
func (n *Node) Pattern(expr string, message ...string) *Node {
	return n.check(CheckPattern, expr, message)
}

// Email requires a string node to hold an e-mail address.
func (n *Node) Email(message ...string) *Node {
	return n.check(CheckEmail, nil, message)
}

// URL requires a string node to hold an absolute URL.
func (n *Node) URL(message ...string) *Node {
	return n.check(CheckURL, nil, message)
}

// UUID requires a string node to hold a canonical UUID.
func (n *Node) UUID(message ...string) *Node {
	return n.check(CheckUUID, nil, message)
}

func (n *Node) check(name CheckName, param any, message []string) *Node {
	c := Check{Name: name, Param: param}
	if len(message) > 0 {
		c.Message = message[0]
	}
	return n.with(func(m *Node) {
		m.Checks = append(m.Checks, c)
	})
}
