package prompt

import (
	"fmt"
	"strings"
)

// ExtractSubstances asks the model for medication or active-substance names
// found in OCR text, as a single comma separated line.
func ExtractSubstances(text string) string {
	return "Analiza el siguiente texto. Tu única tarea es extraer los nombres de los medicamentos o sustancias activas. " +
		"Devuelve únicamente una lista de estos nombres, separados por comas. " +
		"Ignora dosis, instrucciones, nombres de doctores o cualquier otra palabra. " +
		"Si no encuentras ningún medicamento, devuelve una respuesta vacía.\n\n" +
		"Texto a analizar:\n" +
		fmt.Sprintf("--- INICIO ---\n%s\n--- FIN ---", text)
}

// ParseNameList splits the model's comma separated answer. Blank entries,
// surrounding quotes, bullets and a trailing period are dropped.
func ParseNameList(answer string) []string {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	answer = strings.ReplaceAll(answer, "\n", ",")
	var out []string
	for _, part := range strings.Split(answer, ",") {
		name := strings.TrimSpace(part)
		name = strings.TrimLeft(name, "-*• ")
		name = strings.TrimRight(name, ".")
		name = strings.Trim(name, "\"'`")
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
