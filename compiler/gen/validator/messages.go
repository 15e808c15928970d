package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/syssam/timescape/schema"
)

// Messages are shared by the in-process validator and the rendered
// TypeScript so that both report identical text.

// Format patterns of the email and uuid named validators.
const (
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	UUIDPattern  = `^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`
)

var emailRE = regexp.MustCompile(EmailPattern)

// typePrefix is completed with the received runtime type.
func typePrefix(expected string) string {
	return "Expected " + expected + ", received "
}

// checkSpec describes the failure reported by a named validator.
type checkSpec struct {
	code     Code
	expected string
	message  string
}

func describeCheck(c schema.Check) checkSpec {
	var s checkSpec
	switch c.Name {
	case schema.CheckMin:
		b, _ := c.Bound()
		s = checkSpec{CodeTooSmall, "number >= " + schema.FormatValue(b), "Number must be greater than or equal to " + schema.FormatValue(b)}
	case schema.CheckMax:
		b, _ := c.Bound()
		s = checkSpec{CodeTooBig, "number <= " + schema.FormatValue(b), "Number must be less than or equal to " + schema.FormatValue(b)}
	case schema.CheckMinLength:
		b, _ := c.Bound()
		s = checkSpec{CodeTooShort, fmt.Sprintf("string with length >= %d", int(b)), fmt.Sprintf("String must contain at least %d character(s)", int(b))}
	case schema.CheckMaxLength:
		b, _ := c.Bound()
		s = checkSpec{CodeTooLong, fmt.Sprintf("string with length <= %d", int(b)), fmt.Sprintf("String must contain at most %d character(s)", int(b))}
	case schema.CheckPattern:
		p, _ := c.Pattern()
		s = checkSpec{CodePattern, "string matching /" + p + "/", "String must match pattern /" + p + "/"}
	case schema.CheckEmail:
		s = checkSpec{CodeInvalidFormat, "email", "Invalid email address"}
	case schema.CheckURL:
		s = checkSpec{CodeInvalidFormat, "url", "Invalid URL"}
	case schema.CheckUUID:
		s = checkSpec{CodeInvalidFormat, "uuid", "Invalid UUID"}
	}
	if c.Message != "" {
		s.message = c.Message
	}
	return s
}

func requiredMessage(name string) string {
	return fmt.Sprintf("Missing required property %q", name)
}

func unknownKeyMessage(name string) string {
	return fmt.Sprintf("Unrecognized property %q", name)
}

func literalMessage(n *schema.Node) string {
	return "Expected literal " + schema.FormatValue(n.Value)
}

func enumMessage(n *schema.Node) string {
	parts := make([]string, len(n.Values))
	for i, v := range n.Values {
		parts[i] = schema.FormatValue(v)
	}
	return "Expected one of " + strings.Join(parts, ", ")
}

const unionMessage = "Value does not match any member of the union"

func tupleMessage(n int) string {
	return fmt.Sprintf("Expected tuple of length %d", n)
}

func minItemsSpec(n int) checkSpec {
	return checkSpec{CodeTooSmall, fmt.Sprintf("array with length >= %d", n), fmt.Sprintf("Array must contain at least %d item(s)", n)}
}

func maxItemsSpec(n int) checkSpec {
	return checkSpec{CodeTooBig, fmt.Sprintf("array with length <= %d", n), fmt.Sprintf("Array must contain at most %d item(s)", n)}
}
