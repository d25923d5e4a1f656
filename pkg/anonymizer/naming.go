package anonymizer

import (
	"strconv"
)

type category int

const (
	categoryObject category = iota
	categoryInterface
	categoryUnion
	categoryEnum
	categoryEnumValue
	categoryInputObject
	categoryInputField
	categoryField
	categoryArgument
	categoryScalar
	categoryDirective
	categoryDefaultString
	categoryDefaultInt
	categoryFragment
	categoryVariable
	categoryAlias
	categoryStringValue
	categoryIntValue

	categoryCount
)

var categoryPrefixes = [categoryCount]string{
	categoryObject:        "Object",
	categoryInterface:     "Interface",
	categoryUnion:         "Union",
	categoryEnum:          "Enum",
	categoryEnumValue:     "EnumValue",
	categoryInputObject:   "InputObject",
	categoryInputField:    "inputField",
	categoryField:         "field",
	categoryArgument:      "argument",
	categoryScalar:        "Scalar",
	categoryDirective:     "Directive",
	categoryDefaultString: "defaultValue",
	categoryFragment:      "Fragment",
	categoryVariable:      "var",
	categoryAlias:         "alias",
	categoryStringValue:   "stringValue",
}

// nameAllocator hands out sequentially numbered names, one counter per category.
// A schema run owns one allocator, every query gets a fresh one.
type nameAllocator struct {
	counters [categoryCount]int
}

func newNameAllocator() *nameAllocator {
	return &nameAllocator{}
}

func (a *nameAllocator) next(c category) string {
	return categoryPrefixes[c] + strconv.Itoa(a.nextInt(c))
}

func (a *nameAllocator) nextInt(c category) int {
	a.counters[c]++
	return a.counters[c]
}
