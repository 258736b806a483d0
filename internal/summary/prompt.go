package summary

import (
	"encoding/json"
	"fmt"
)

const promptTemplate = `
Você é um especialista em análise de vendas de E-commerce, especificamente Amazon FBA.
Analise os seguintes dados de vendas (em formato JSON) e forneça um relatório executivo curto em Markdown.

Dados das vendas:
%s

Foque nos seguintes pontos:
1. Resumo da lucratividade (quais produtos dão mais lucro, quais dão prejuízo).
2. Eficiência logística baseada nas cidades e status.
3. Sugestões acionáveis para aumentar o lucro ou reduzir custos.
4. Use formatação rica (negrito, listas) para facilitar a leitura.

Responda em Português do Brasil.
`

func BuildPrompt(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode sales data: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}
