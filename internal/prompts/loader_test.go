package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(TutorFile, "feedback-body")
	require.NoError(t, err)
	assert.Contains(t, prompt, "RESPOSTA CORRETA: {{.Correct}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(TutorFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Olá {{.Name}}, bem-vindo ao {{.Course}}!"
	data := map[string]string{
		"Name":   "Ana",
		"Course": "preparatório",
	}

	assert.Equal(t, "Olá Ana, bem-vindo ao preparatório!", Format(template, data))
}

func TestFormat_ValuesAreNotExpanded(t *testing.T) {
	template := "Tema: {{.Theme}}\nTexto: {{.Text}}"
	data := map[string]string{
		"Theme": "Mobilidade",
		"Text":  "eu escrevi {{.Theme}} literalmente",
	}

	assert.Equal(t, "Tema: Mobilidade\nTexto: eu escrevi {{.Theme}} literalmente", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Olá {{.Name}}"
	assert.Equal(t, template, Format(template, map[string]string{}))
}

func TestRender(t *testing.T) {
	ClearCache()

	out, err := Render(TutorFile, "themes-body", map[string]string{"Count": "6"})
	require.NoError(t, err)
	assert.Contains(t, out, "Gere exatamente 6 temas inéditos.")

	_, err = Render(TutorFile, "missing", nil)
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(TutorFile)
	require.NoError(t, err)
	assert.True(t, len(keys) > 0)
	assert.IsIncreasing(t, keys)
	for _, feature := range []string{"feedback", "progress", "motivation", "themes", "essay-grade"} {
		assert.Contains(t, keys, feature+"-system")
		assert.Contains(t, keys, feature+"-body")
		assert.Contains(t, keys, feature+"-schema")
	}
}

func TestSchemasAreExamplesOfJSON(t *testing.T) {
	ClearCache()

	// feedback and themes schemas are literal JSON; the others carry enum hints
	for _, key := range []string{"feedback-schema", "themes-schema"} {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(MustGet(TutorFile, key)), &v), key)
	}
	assert.True(t, strings.HasPrefix(MustGet(TutorFile, "progress-schema"), "{"))
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get(TutorFile, "feedback-system")
	require.NoError(t, err)

	prompt2, err := Get(TutorFile, "feedback-system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
