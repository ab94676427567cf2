package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/rxscan/internal/domain/reports"
)

const summaryIntro = "Actúa como un asistente farmacéutico empático y muy claro. Te daré una lista de sustancias encontradas en un producto y su categoría de riesgo en el embarazo (A, B, C, D, X).\n" +
	"Tu misión es explicar en un lenguaje extremadamente sencillo, directo y sin tecnicismos qué significan estos riesgos para una mujer embarazada o que planea estarlo.\n" +
	"Resume el nivel de precaución necesario. Al final, SIEMPRE debes incluir la recomendación enfática de consultar a un médico antes de tomar cualquier decisión.\n" +
	"\nAquí están las sustancias:\n"

// RiskSummary builds the pregnancy-risk summary prompt for the matched substances.
func RiskSummary(known []reports.KnownSubstance) string {
	var b strings.Builder
	b.WriteString(summaryIntro)
	for _, s := range known {
		fmt.Fprintf(&b, "\n- **%s (Categoría %s):** %s", s.Name, s.Category, s.Description)
	}
	b.WriteString("\n\nGenera un resumen consolidado y fácil de entender basado en esta información.")
	return b.String()
}
