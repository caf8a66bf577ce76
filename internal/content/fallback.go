package content

import (
	"fmt"
	"strings"

	"github.com/malu-oliver/agent-financeiro/internal/profiling"
)

// fallbackParagraphs renders the offline template for req.Profile.
// Unknown profiles get the moderate template.
func fallbackParagraphs(req Request) []string {
	who := orDefault(req.User.Name, "investidor")
	if req.User.Age > 0 {
		who += fmt.Sprintf(" com %d anos", req.User.Age)
	}
	if req.User.Income > 0 {
		who += " e renda de " + FormatBRL(req.User.Income)
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		goal = "seus objetivos financeiros"
	}
	lead := fmt.Sprintf("Para você, %s, que busca %s, ", who, goal)

	switch req.Profile {
	case profiling.Conservative:
		return []string{
			lead + "como investidor conservador recomendo focar em segurança e estabilidade. A preservação do capital deve ser sua prioridade, com investimentos de baixo risco e alta liquidez.",
			"Considere aplicar em Tesouro Direto, CDBs de bancos sólidos, LCIs e LCAs, que oferecem isenção de imposto de renda. Fundos de renda fixa e previdência privada conservadora também são opções adequadas. Mantenha uma reserva de emergência equivalente a seis meses de despesas.",
			"Acompanhe seus investimentos regularmente e ajuste a carteira conforme suas necessidades evoluírem. Busque educação financeira contínua e consulte profissionais qualificados em decisões importantes. Consistência e paciência são fundamentais no perfil conservador.",
		}
	case profiling.Aggressive:
		return []string{
			lead + "como investidor agressivo recomendo focar em crescimento patrimonial com tolerância à volatilidade. Sua carteira pode ter maior exposição a ativos de alto potencial.",
			"Considere de 40% a 50% em renda variável (ações de crescimento, small caps, ETFs setoriais), de 20% a 30% em fundos imobiliários e o restante em renda fixa atrelada à inflação. Mercados internacionais e uma parcela pequena em criptomoedas podem ampliar a diversificação.",
			"Mantenha-se informado sobre as tendências de mercado e esteja preparado para oscilações. Diversifique entre setores e geografias. Lembre-se de que alto retorno potencial vem com alto risco: invista apenas o que estiver disposto a arriscar.",
		}
	default:
		return []string{
			lead + "como investidor moderado recomendo um equilíbrio entre segurança e crescimento. Sua estratégia pode combinar renda fixa com exposição controlada à renda variável.",
			"Considere uma carteira com 60% a 70% em renda fixa (Tesouro IPCA+, CDBs, debêntures) e 30% a 40% em renda variável (fundos imobiliários, ações de empresas sólidas, ETFs). Fundos multimercado e ETFs internacionais ajudam a diversificar riscos.",
			"Revise sua alocação a cada trimestre e rebalanceie quando necessário. Estabeleça metas claras e prazos realistas. A educação financeira é sua aliada para decisões mais assertivas ao longo do tempo.",
		}
	}
}
