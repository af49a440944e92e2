package dto

// Estados y acciones de una fila importada.
const (
	ImportStatusOK      = "exitoso"
	ImportStatusError   = "error"
	ImportActionCreated = "creado"
	ImportActionUpdated = "actualizado"
)

// ImportSummary resumen de una importación masiva.
type ImportSummary struct {
	TotalRows   int    `json:"total_filas"`
	Succeeded   int    `json:"exitosos"`
	Created     int    `json:"creados"`
	Updated     int    `json:"actualizados"`
	Failed      int    `json:"errores"`
	SuccessRate string `json:"tasa_exito"` // "87.5%"
	AlertsSent  int    `json:"alertas_enviadas"`
}

// ImportRowResult detalle por fila. Row es el número de fila en la planilla (encabezado = 1).
type ImportRowResult struct {
	Row     int    `json:"fila"`
	SKU     string `json:"sku"`
	Status  string `json:"estado"`
	Action  string `json:"accion,omitempty"`
	Message string `json:"mensaje"`
}

// ImportReport resultado completo de una importación.
type ImportReport struct {
	Summary ImportSummary     `json:"resumen"`
	Details []ImportRowResult `json:"detalles"`
}
