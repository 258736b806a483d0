package cel

// SeverityExpressionExamples are predicates accepted in alerts.severity_rules.
// The first four reproduce the built-in severity chain.
var SeverityExpressionExamples = map[string]string{
	"returned_or_canceled": `field == "envioStatus" && string(value) in ["Devolvido", "Cancelado"]`,
	"profit_above":         `field == "lucro" && operator == "maior que"`,
	"loss_below_zero":      `field == "lucro" && operator == "menor que" && numeric && number < 0.0`,
	"slow_delivery":        `field == "recebimentoDias" && operator == "maior que"`,
	"big_ticket":           `field == "valorVenda" && numeric && number >= 1000.0`,
	"city_watch":           `field == "cidade" && operator == "contém"`,
	"always":               `true`,
}
