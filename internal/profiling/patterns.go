package profiling

import (
	"log/slog"
	"regexp"
)

// defaultSignatures is the built-in bank. Sources are matched against text
// that has already been through textnorm.Clean, so accented alternatives are
// kept only for callers that feed raw text.
var defaultSignatures = map[Profile][]string{
	Conservative: {
		`seguran[çc]a`,
		`estabil(?:e|izado|idade)`,
		`reserva(?:s)?(?:\s+financeira)?`,
		`aposentad(?:o|a|oria)`,
		`baixo(?:s)?\s+risco(?:s)?`,
		`garantia(?:s)?`,
		`proteg(?:er|ido|ao)`,
		`poupan[çc]a`,
		`conserv(?:ar|ador|ativa)`,
		`sem\s+risco`,
		`seguro(?:s)?`,
		`renda\s+fixa`,
		`tesouro`,
		`cdb(?:s)?`,
		`debentur(?:e|as)?`,
		`prote[cç][aã]o`,
	},
	Moderate: {
		`equil[ií]brio?(?:ar|ado)?`,
		`diversifica(?:r|[çã]ao|cao|do)`,
		`m[eé]dio(?:s)?\s+prazo`,
		`balancead(?:o|a|as)?`,
		`misto(?:s)?`,
		`moderado(?:s)?`,
		`gradual(?:mente)?`,
		`paulatinam(?:ente)?`,
		`prudente`,
		`cauteloso`,
		`diversificar\s+carteira`,
		`alocac(?:ã|a)o\s+estrat[eé]gica`,
		`entre.*(risco|retorno)`,
		`meio\s+termo`,
	},
	Aggressive: {
		`crescimento`,
		`alto(?:s)?\s+retorno(?:s)?`,
		`alto(?:s)?\s+risco(?:s)?`,
		`longo(?:s)?\s+prazo(?:s)?`,
		`maximi[sz]ar`,
		`multiplicar`,
		`agressiv(?:o|a|amente)`,
		`expans(?:ao|ivo)`,
		`arriscar`,
		`lucr(?:o|ar)\s+(?:alto|maximo)`,
		`rapid(?:o|amente)`,
		`a[cç][oõ]es?`,
		`renda\s+variavel`,
		`especula(?:r|ção|cao|coes)`,
		`alavancagem|alavancar`,
		`day\s+trade|swing\s+trade|trading`,
		`criptomoedas?|crypto(?:s)?`,
		`arrojad(?:o|a|os|as)?`,
	},
}

// Signature is one compiled profile indicator. Source doubles as the key of
// its effectiveness weight.
type Signature struct {
	Profile Profile
	Source  string
	re      *regexp.Regexp
}

// Count returns the number of non-overlapping matches in text.
func (s *Signature) Count(text string) int {
	return len(s.re.FindAllStringIndex(text, -1))
}

// Matches reports whether text contains the signature.
func (s *Signature) Matches(text string) bool {
	return s.re.MatchString(text)
}

// PatternBank holds the compiled signatures of every profile. It is
// immutable after construction; the mutable weights live in the engine.
type PatternBank struct {
	byProfile [3][]*Signature
	skipped   []string
}

// NewPatternBank compiles the default signatures plus extra. Sources that do
// not compile, or that repeat a source already in the bank, are skipped.
func NewPatternBank(extra map[Profile][]string, logger *slog.Logger) *PatternBank {
	if logger == nil {
		logger = slog.Default()
	}
	merged := make(map[Profile][]string, len(Profiles))
	for _, p := range Profiles {
		merged[p] = append([]string(nil), defaultSignatures[p]...)
	}
	for key, sources := range extra {
		p, ok := ParseProfile(string(key))
		if !ok {
			logger.Debug("skipping signatures for unknown profile", "profile", key)
			continue
		}
		merged[p] = append(merged[p], sources...)
	}

	b := &PatternBank{}
	seen := make(map[string]bool)
	for _, p := range Profiles {
		for _, src := range merged[p] {
			if src == "" || seen[src] {
				continue
			}
			re, err := regexp.Compile("(?i)" + src)
			if err != nil {
				logger.Debug("skipping malformed signature", "profile", p, "source", src, "error", err)
				b.skipped = append(b.skipped, src)
				continue
			}
			seen[src] = true
			b.byProfile[p.Index()] = append(b.byProfile[p.Index()], &Signature{Profile: p, Source: src, re: re})
		}
	}
	return b
}

// Signatures returns the compiled signatures of p in declaration order.
func (b *PatternBank) Signatures(p Profile) []*Signature {
	return b.byProfile[p.Index()]
}

// Skipped returns the sources rejected at construction.
func (b *PatternBank) Skipped() []string {
	return append([]string(nil), b.skipped...)
}

// Len returns the number of compiled signatures.
func (b *PatternBank) Len() int {
	return len(b.byProfile[0]) + len(b.byProfile[1]) + len(b.byProfile[2])
}
