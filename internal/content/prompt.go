package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const systemPrompt = `Você é um consultor financeiro especializado em educação financeira personalizada para investidores brasileiros. Escreva em português do Brasil, em tom profissional mas acessível.`

// excerptRunes caps each quoted past text.
const excerptRunes = 200

func buildUserMessage(req Request, s Strategy, conversationItems int) string {
	var b strings.Builder

	b.WriteString("DADOS DO CLIENTE:\n")
	b.WriteString(fmt.Sprintf("- Nome: %s\n", orDefault(req.User.Name, "usuário")))
	if req.User.Age > 0 {
		b.WriteString(fmt.Sprintf("- Idade: %d anos\n", req.User.Age))
	} else {
		b.WriteString("- Idade: não informada\n")
	}
	if req.User.Income > 0 {
		b.WriteString(fmt.Sprintf("- Renda mensal: %s\n", FormatBRL(req.User.Income)))
	} else {
		b.WriteString("- Renda mensal: não informada\n")
	}
	b.WriteString(fmt.Sprintf("- Valor para investir: %s\n", FormatBRL(req.User.Amount)))
	b.WriteString(fmt.Sprintf("- Perfil de investidor: %s\n", strings.ToUpper(string(req.Profile))))
	b.WriteString(fmt.Sprintf("- Objetivo financeiro: %q\n", req.Goal))

	b.WriteString("\nCONTEXTO DA CONSULTA:\n")
	b.WriteString(fmt.Sprintf("- Tipo de conteúdo: %s\n", s.Type))
	b.WriteString(fmt.Sprintf("- Foco principal: %s\n", s.Focus))
	b.WriteString(fmt.Sprintf("- Nível de detalhe: %s\n", s.Complexity))

	if n := min(len(req.Conversation), conversationItems); n > 0 {
		b.WriteString("\nCONTEÚDOS ANTERIORES (não repita):\n")
		for _, c := range req.Conversation[:n] {
			b.WriteString(fmt.Sprintf("- %s\n", excerpt(c, excerptRunes)))
		}
	}

	b.WriteString(fmt.Sprintf(`
INSTRUÇÕES:
1. Escreva EXATAMENTE 3 parágrafos, cada um com 4 a 6 frases.
2. Personalize para o perfil %[1]s e o objetivo informado.
3. Inclua exemplos práticos e produtos financeiros concretos.
4. Foque em educação financeira, não apenas em recomendações.
5. Não use marcadores, números ou formatação; apenas texto corrido.

ESTRUTURA:
1º parágrafo: análise do perfil %[1]s em relação ao objetivo.
2º parágrafo: estratégias e produtos financeiros adequados.
3º parágrafo: plano de ação e próximos passos.`, req.Profile))

	return b.String()
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
