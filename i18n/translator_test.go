package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	msg := T("invalid_type", map[string]string{"expected": "int", "got": "string"})
	assert.Equal(t, "invalid type: expected int, got string", msg)

	SetLanguage("ja")
	defer SetLanguage("en")
	msg = T("immutable", map[string]string{"field": "name"})
	assert.Equal(t, "フィールド name は変更できません", msg)
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

func TestTranslator_MissingDataKeepsPlaceholder(t *testing.T) {
	assert.Equal(t, "required field {field} is missing", T("required", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	assert.Equal(t, "X:validation", T("validation", nil))
}
