package serpcluster

import (
	"fmt"

	"github.com/projectdiscovery/fasttemplate"
)

const (
	// ParenthesisOpen marker - begin of a placeholder
	ParenthesisOpen = "{{"
	// ParenthesisClose marker - end of a placeholder
	ParenthesisClose = "}}"
)

// DefaultLabelFormat names a cluster after its highest-frequency keyword.
const DefaultLabelFormat = "[{{id}}] {{name}} ({{size}} queries)"

// Replace replaces placeholders in template with values on the fly.
func Replace(template string, values map[string]interface{}) string {
	valuesMap := make(map[string]interface{}, len(values))
	for k, v := range values {
		valuesMap[k] = fmt.Sprint(v)
	}
	return fasttemplate.ExecuteStringStd(template, ParenthesisOpen, ParenthesisClose, valuesMap)
}

// renderLabel builds the human-readable cluster title. Supported
// placeholders: {{id}}, {{name}}, {{size}}, {{geo}}.
func renderLabel(c Cluster, format string) string {
	if format == "" {
		format = DefaultLabelFormat
	}
	name, bestFreq := "", -1
	for _, q := range c.Queries {
		if q.Frequency > bestFreq {
			name, bestFreq = q.Keyword, q.Frequency
		}
	}
	return Replace(format, map[string]interface{}{
		"id":   c.ID,
		"name": name,
		"size": len(c.Queries),
		"geo":  c.Geography,
	})
}
