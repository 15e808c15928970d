// Package schema provides the schema algebra consumed by every generator.
//
// A schema is a tree of *Node values. Each node carries exactly one Kind:
//
//   - KindPrimitive: string, number, boolean, null or undefined
//   - KindLiteral: one fixed scalar value
//   - KindObject: ordered properties, an optional required-name set and an
//     additional-properties policy
//   - KindArray: element schema with optional min/max length
//   - KindTuple: fixed ordered list of element schemas
//   - KindUnion: ordered alternatives, one of which must hold
//   - KindIntersection: ordered members, all of which must hold
//   - KindEnum: finite set of literal values
//
// Modifiers (Optional, Nullable, Description) apply to every kind, and
// named checks (min, max, minLength, maxLength, pattern, email, url, uuid)
// attach to primitives.
//
// # Quick Start
//
//	user := schema.Object(
//	    schema.Prop("id", schema.String().UUID()),
//	    schema.Prop("email", schema.String().Email()),
//	    schema.Prop("age", schema.Number().Min(0).AsOptional()),
//	    schema.Prop("role", schema.Enum("admin", "member")),
//	).Strict()
//
// Builder methods never mutate their receiver: modifiers return a copy, so a
// node can be shared between trees once it is built.
//
// # Construction checks
//
// Validate reports malformed trees (a union without alternatives, an empty
// enum, a pattern that does not compile, ...) as *timescape.SchemaError.
// Every generator calls it before lowering, so malformed input fails at
// construction time and never at validation time.
package schema
