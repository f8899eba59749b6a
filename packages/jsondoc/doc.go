// Package jsondoc parses JSON bytes into an immutable document and answers
// navigation queries against it.
//
// A Document owns every node of the parsed tree in a flat arena. Navigation
// returns Value handles that index into that arena; they never copy subtrees
// and stay valid as long as the Document is reachable. Because a Document is
// never mutated after Parse returns, any number of goroutines may navigate
// it concurrently.
//
// Navigation:
//   - Get walks an exact path of object keys and array indices
//   - Find looks only at the immediate members of an object
//   - Search descends depth-first, members in stored order, and returns the
//     first member whose key matches
//
// Typed extraction (AsString, AsNumber, AsBool, AsArray, AsObject, ...)
// succeeds only when the value's Kind matches and otherwise returns a
// *WrongTypeError naming both kinds.
package jsondoc
