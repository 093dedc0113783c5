package conversations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplate(t *testing.T) {
	assert.Equal(t, TemplateShort, ParseTemplate("short"))
	assert.Equal(t, TemplateMid, ParseTemplate("mid"))
	assert.Equal(t, TemplateLong, ParseTemplate("long"))
	assert.Equal(t, TemplateShort, ParseTemplate(""))
	assert.Equal(t, TemplateShort, ParseTemplate("LONG"))
}
