package email

import "fmt"

// Field identifies one of the text fields that cleansing operates on.
type Field int

const (
	FieldFrom Field = iota
	FieldTo
	FieldSubject
	FieldDatetime
	FieldBodyText
)

// Fields lists every cleansable field in a fixed order.
var Fields = []Field{FieldFrom, FieldTo, FieldSubject, FieldDatetime, FieldBodyText}

var fieldNames = map[Field]string{
	FieldFrom:     "header_from",
	FieldTo:       "header_to",
	FieldSubject:  "header_subject",
	FieldDatetime: "header_datetime",
	FieldBodyText: "body_text",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField maps a configuration name such as "body_text" to a Field.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown message field %q", name)
}
