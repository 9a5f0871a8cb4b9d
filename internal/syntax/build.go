package syntax

import (
	"fmt"
	"strings"
)

// StringLiteral renders s as a double-quoted JavaScript string
func StringLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// MemberAssignment renders `object.prop = value;`
func MemberAssignment(object, prop, value string) string {
	return object + "." + prop + " = " + value + ";"
}

// Assignment renders the expression `target = value`
func Assignment(target, value string) string {
	return target + " = " + value
}

// VarDeclaration renders `var name;`
func VarDeclaration(name string) string {
	return "var " + name + ";"
}
