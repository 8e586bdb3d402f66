package synth

import (
	"strings"

	"github.com/USSTM/swagger-analyzer/internal/schemadoc"
)

const SystemRole = "You are a Swagger/OpenAPI documentation expert."

const preamble = `You are an expert in OpenAPI/Swagger documentation.
Given the base Swagger YAML and request/response details,
expand it into a complete OpenAPI-compliant YAML.`

// BuildPrompt embeds the dumped base document and the sample exchange text in
// the fixed instruction template. The sample text is passed through unchanged.
func BuildPrompt(doc *schemadoc.Document, sample string) (string, error) {
	dumped, err := doc.Dump()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\n---BASE SWAGGER---\n")
	b.WriteString(dumped)
	b.WriteString("\n---REQUEST RESPONSE---\n")
	b.WriteString(sample)
	b.WriteString("\n")
	return b.String(), nil
}
