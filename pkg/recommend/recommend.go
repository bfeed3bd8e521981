// Package recommend maps the aggregate analysis into the narrative
// recommendations section of the report. Pure lookup and banding, no
// I/O.
package recommend

import "github.com/qtherapy/report-engine/pkg/models/domain"

// Narrative is the recommendations content to be rendered by the
// compositor. All strings here are static copy and contain no
// caller-supplied text.
type Narrative struct {
	Headline string
	Body     string
	Fields   []FieldAdvice
}

// FieldAdvice explains one critical field and lists practical
// suggestions for it.
type FieldAdvice struct {
	Field       string
	Explanation string
	Suggestions []string
}

type scoreBand struct {
	min      float64
	headline string
	body     string
}

// Bands ordered high to low; first match wins.
var scoreBands = []scoreBand{
	{70, "Evolução consistente",
		"O quadro geral indica uma evolução consistente. Os índices vibracionais estão em faixa favorável; recomenda-se manter o ritmo atual de sessões e reavaliar o plano terapêutico a cada ciclo."},
	{50, "Progresso moderado",
		"O progresso é moderado, com ganhos claros em parte dos campos avaliados. Recomenda-se intensificar o acompanhamento dos campos críticos listados abaixo e manter a frequência das sessões."},
	{30, "Progresso inicial",
		"Os primeiros sinais de resposta ao tratamento estão presentes, mas ainda instáveis. Recomenda-se aumentar a frequência das sessões e dedicar atenção prioritária aos campos críticos."},
	{0, "Atenção necessária",
		"O quadro geral requer atenção imediata. Recomenda-se revisão do plano terapêutico, sessões mais frequentes e acompanhamento próximo de todos os campos avaliados."},
}

type fieldCopy struct {
	explanation string
	suggestions []string
}

var fieldTable = map[string]fieldCopy{
	"Energia": {
		"O campo energético apresenta índices abaixo do esperado, o que costuma se refletir em cansaço e baixa disposição.",
		[]string{
			"Priorizar sono regular, com horários fixos para dormir e acordar",
			"Incluir caminhadas leves ao ar livre pelo menos três vezes por semana",
			"Reduzir estimulantes no período da tarde e da noite",
		},
	},
	"Sono": {
		"A qualidade do sono está comprometida, reduzindo a capacidade de recuperação entre as sessões.",
		[]string{
			"Evitar telas na última hora antes de dormir",
			"Manter o quarto escuro e silencioso",
			"Praticar respiração lenta ao deitar (4 segundos inspirando, 6 expirando)",
		},
	},
	"Foco": {
		"A capacidade de concentração apresenta oscilações relevantes ao longo das sessões.",
		[]string{
			"Trabalhar em blocos curtos de 25 minutos com pausas",
			"Praticar meditação guiada de 10 minutos diários",
			"Limitar notificações durante períodos de trabalho",
		},
	},
	"Ansiedade": {
		"Os marcadores de ansiedade permanecem elevados, interferindo nos demais campos avaliados.",
		[]string{
			"Praticar exercícios de respiração diafragmática duas vezes ao dia",
			"Registrar gatilhos de ansiedade em um diário simples",
			"Reduzir cafeína e avaliar a rotina de pausas durante o dia",
		},
	},
	"Equilíbrio": {
		"O campo de equilíbrio emocional mostra variações acima do padrão esperado para a fase atual do tratamento.",
		[]string{
			"Manter rotina estável de refeições e sono",
			"Incluir uma atividade prazerosa por dia, ainda que breve",
			"Compartilhar percepções da semana na abertura de cada sessão",
		},
	},
}

var genericField = fieldCopy{
	"Este campo apresentou índices abaixo da faixa esperada e merece acompanhamento dedicado nas próximas sessões.",
	[]string{
		"Registrar diariamente a percepção sobre este campo em escala de 0 a 10",
		"Trazer o tema para discussão na próxima sessão",
		"Reavaliar o campo após três sessões consecutivas",
	},
}

// Build produces the narrative for the given analysis. Unknown
// critical fields fall back to generic copy rather than being
// dropped.
func Build(analysis domain.AnalysisSummary) Narrative {
	score := 0.0
	if analysis.OverallScore != nil {
		score = *analysis.OverallScore
	}

	var band scoreBand
	for _, b := range scoreBands {
		if score >= b.min {
			band = b
			break
		}
	}

	n := Narrative{Headline: band.headline, Body: band.body}
	for _, field := range analysis.CriticalFields {
		c, ok := fieldTable[field]
		if !ok {
			c = genericField
		}
		n.Fields = append(n.Fields, FieldAdvice{
			Field:       field,
			Explanation: c.explanation,
			Suggestions: c.suggestions,
		})
	}
	return n
}
