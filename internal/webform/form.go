package webform

import "net/url"

// Field is one named input in a scraped form.
type Field struct {
	Name  string
	Value string
}

// Form is the first <form> on a page, with its inputs in document
// order. Order matters: the first-empty-field fallback fills whichever
// blank input the page author put first.
type Form struct {
	Action string
	Fields []Field
}

// put updates an existing field or appends a new one, so duplicate
// input names collapse the way a parse into a map would, while keeping
// first-seen order.
func (f *Form) put(name, value string) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Value = value
			return
		}
	}
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
}

// SetFirst assigns value to the first field among names that the form
// actually has, reporting whether any matched.
func (f *Form) SetFirst(value string, names ...string) bool {
	for _, name := range names {
		for i := range f.Fields {
			if f.Fields[i].Name == name {
				f.Fields[i].Value = value
				return true
			}
		}
	}
	return false
}

// FillFirstEmpty assigns value to the first field whose value is empty.
func (f *Form) FillFirstEmpty(value string) bool {
	for i := range f.Fields {
		if f.Fields[i].Value == "" {
			f.Fields[i].Value = value
			return true
		}
	}
	return false
}

// Add appends a field the page did not declare.
func (f *Form) Add(name, value string) {
	f.Fields = append(f.Fields, Field{Name: name, Value: value})
}

// Values encodes the fields for a form-urlencoded POST.
func (f *Form) Values() url.Values {
	values := make(url.Values, len(f.Fields))
	for _, field := range f.Fields {
		values.Set(field.Name, field.Value)
	}
	return values
}
