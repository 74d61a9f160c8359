package xmltree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemInfo = `<?xml version="1.0" encoding="UTF-8"?>
<xml>
  <title>Harbour at dusk</title>
  <subjec></subjec>
  <creato>Unknown</creato>
  <find>12.jp2</find>
</xml>`

func TestParse_StripsDeclarationAndKeepsOrder(t *testing.T) {
	root, err := Parse([]byte(itemInfo))
	require.NoError(t, err)

	assert.Equal(t, "xml", root.Name())
	assert.Empty(t, root.Text)

	var names []string
	for _, c := range root.Children {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"title", "subjec", "creato", "find"}, names)
	assert.Equal(t, "12.jp2", root.ChildText("find"))
	assert.False(t, root.Child("subjec").HasContent())
	assert.True(t, root.Child("title").HasContent())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("<xml><title>"))
	assert.Error(t, err)
}

func TestWriteDocument_RoundTrip(t *testing.T) {
	record := New("record")
	record.Append(NewText("A", "x"), NewText("B", "y"))

	var buf bytes.Buffer
	require.NoError(t, record.WriteDocument(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`))

	parsed, err := Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, parsed.Children, 2)
	assert.Equal(t, "A", parsed.Children[0].Name())
	assert.Equal(t, "x", parsed.Children[0].Text)
	assert.Equal(t, "B", parsed.Children[1].Name())
	assert.Equal(t, "y", parsed.Children[1].Text)
}

func TestChildrenNamedAndRename(t *testing.T) {
	root, err := Parse([]byte(`<cpd><type>Document</type><page/><node/><page/></cpd>`))
	require.NoError(t, err)

	assert.Len(t, root.ChildrenNamed("page"), 2)
	assert.Nil(t, root.Child("missing"))
	assert.Equal(t, "", root.ChildText("missing"))

	root.Rename("structure")
	assert.Equal(t, "structure", root.Name())
}
