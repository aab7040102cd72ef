package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostFieldMetadata(t *testing.T) {
	cases := map[string]string{
		"text":  "Post text",
		"group": "Group",
		"image": "Image",
	}
	for name, label := range cases {
		meta, ok := PostField(name)
		require.True(t, ok, "field %q", name)
		assert.Equal(t, label, meta.Label)
		assert.NotEmpty(t, meta.Help)
	}
}

func TestCommentFieldMetadata(t *testing.T) {
	meta, ok := CommentField("text")
	require.True(t, ok)
	assert.Equal(t, "Comment text", meta.Label)
	assert.NotEmpty(t, meta.Help)
}

func TestUnknownFieldHasNoMetadata(t *testing.T) {
	_, ok := PostField("author")
	assert.False(t, ok)
	_, ok = GroupField("nope")
	assert.False(t, ok)
}

func TestPostExcerpt(t *testing.T) {
	assert.Equal(t, "short", Post{Text: "short"}.Excerpt())
	assert.Equal(t, "exactly15chars!", Post{Text: "exactly15chars!"}.Excerpt())

	long := Post{Text: "this text is clearly longer than fifteen characters"}
	assert.Equal(t, "this text is cl", long.Excerpt())

	cyrillic := Post{Text: "тестовый текст поста"}
	assert.Equal(t, "тестовый текст ", cyrillic.Excerpt())
}

func TestGroupString(t *testing.T) {
	assert.Equal(t, "Go enthusiasts", Group{Title: "Go enthusiasts"}.String())
}
