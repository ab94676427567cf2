package uploader

// User-facing texts.
const (
	MsgNoFile         = "Por favor, selecciona una imagen primero."
	MsgAnalyzing      = "Analizando, por favor espera... Esto puede tardar unos segundos."
	MsgComplete       = "¡Análisis completado!"
	MsgMissingRegions = "Error: Faltan elementos en la página para mostrar el reporte. Revisa los registros del servidor."
	MsgNoText         = "No se pudo extraer texto de la imagen."
	MsgNoSummary      = "No se pudo generar un resumen."
	MsgNoKnown        = "No se encontraron en nuestra base de datos sustancias de riesgo conocido a partir del texto de la imagen."
	MsgRiskCategory   = "Categoría de Riesgo: "
	errorPrefix       = "Error: "
)
