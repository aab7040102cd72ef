package models

// FieldMeta carries the human-facing label and help text for a model
// field. Declared as static lookup tables next to the entity types so
// form rendering and validation messages never reach into ORM
// internals for display strings.
type FieldMeta struct {
	Label string `json:"label"`
	Help  string `json:"help"`
}

var postFields = map[string]FieldMeta{
	"text":  {Label: "Post text", Help: "Enter the text of your post"},
	"group": {Label: "Group", Help: "Choose a group for the post, or leave it empty"},
	"image": {Label: "Image", Help: "Attach an image to the post"},
}

var commentFields = map[string]FieldMeta{
	"text": {Label: "Comment text", Help: "Enter the text of your comment"},
}

var groupFields = map[string]FieldMeta{
	"title":       {Label: "Group name", Help: "Enter the name of the group"},
	"slug":        {Label: "Slug", Help: "Short unique identifier used in the group URL"},
	"description": {Label: "Description", Help: "Describe what the group is about"},
}

// PostField returns metadata for a Post field by its JSON name.
func PostField(name string) (FieldMeta, bool) {
	m, ok := postFields[name]
	return m, ok
}

// CommentField returns metadata for a Comment field by its JSON name.
func CommentField(name string) (FieldMeta, bool) {
	m, ok := commentFields[name]
	return m, ok
}

// GroupField returns metadata for a Group field by its JSON name.
func GroupField(name string) (FieldMeta, bool) {
	m, ok := groupFields[name]
	return m, ok
}
